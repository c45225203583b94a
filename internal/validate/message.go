package validate

import (
	"errors"

	"github.com/starford/lkr/internal/apperr"
)

// parseMessage strips the file path from parse errors; the issue already
// names the file.
func parseMessage(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Msg != "" {
		return ae.Msg
	}
	return err.Error()
}
