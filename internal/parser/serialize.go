package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/starford/lkr/internal/models"
)

// Serialize renders entry as a front matter block followed by its body.
// Keys are emitted in a fixed order; optional fields are omitted when unset.
func Serialize(entry models.Entry) (string, error) {
	fm := entry.FrontMatter
	doc := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content, str(key), value)
	}

	add("id", str(fm.ID.Value()))
	add("title", str(fm.Title))
	add("type", str(fm.Type.String()))
	tags := make([]string, len(fm.Tags))
	for i, t := range fm.Tags {
		tags[i] = t.Value()
	}
	add("tags", seq(tags))
	add("created", date(fm.Created))
	if !fm.Updated.IsZero() {
		add("updated", date(fm.Updated))
	}
	if fm.Status != models.StatusNone {
		add("status", str(fm.Status.String()))
	}
	if fm.Difficulty != "" {
		add("difficulty", str(fm.Difficulty))
	}
	if fm.Author != "" {
		add("author", str(fm.Author))
	}
	if len(fm.Related) > 0 {
		related := make([]string, len(fm.Related))
		for i, id := range fm.Related {
			related[i] = id.Value()
		}
		add("related", seq(related))
	}
	if len(fm.Source) > 0 {
		keys := make([]string, 0, len(fm.Source))
		for k := range fm.Source {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		src := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			src.Content = append(src.Content, str(k), str(fm.Source[k]))
		}
		add("source", src)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("parser: encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("parser: encode front matter: %w", err)
	}
	buf.WriteString("---\n\n")
	buf.WriteString(entry.Body)
	return buf.String(), nil
}

// Write serializes entry to path, creating parent directories. The file is
// replaced atomically; a failed write leaves any previous content in place.
func Write(entry models.Entry, path string) error {
	content, err := Serialize(entry)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("parser: mkdir: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader([]byte(content))); err != nil {
		return fmt.Errorf("parser: write %s: %w", path, err)
	}
	return nil
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func date(t time.Time) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: t.Format(models.DateLayout)}
}

func seq(items []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, s := range items {
		n.Content = append(n.Content, str(s))
	}
	return n
}
