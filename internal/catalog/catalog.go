package catalog

import "github.com/starford/lkr/internal/index"

// Catalog is the read/write surface of the entry mirror. Consumers depend on
// it rather than *DB so tests can substitute a fake.
type Catalog interface {
	Upsert(e index.Entry, checksum string, related []string) error
	Delete(path string) error
	AllChecksums() (map[string]string, error)
	List(tag, typ string) ([]index.Entry, error)
	Get(id string) ([]index.Entry, error)
	Backlinks(id string) ([]index.Entry, error)
	Count() (int, error)
	Close() error
}

var _ Catalog = (*DB)(nil)
