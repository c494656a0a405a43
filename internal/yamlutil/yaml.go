// Package yamlutil decodes the YAML documents tex2pdf reads: the page-size
// preset table and user config files. Decoding is strict (unknown keys are
// errors) and bounded by MaxInputSize. Syntax and field errors carry the
// line and column of the offending node.
package yamlutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// MaxInputSize bounds a document in bytes.
var MaxInputSize = 1 << 20

var (
	ErrEmpty          = errors.New("yamlutil: empty document")
	ErrNilDestination = errors.New("yamlutil: nil destination")
	ErrTooLarge       = errors.New("yamlutil: document too large")
)

// Decode decodes data into v, rejecting keys v does not declare.
func Decode(data []byte, v any) error {
	switch {
	case v == nil:
		return ErrNilDestination
	case len(data) == 0:
		return ErrEmpty
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: over %d bytes", ErrTooLarge, MaxInputSize)
	}

	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %s", yaml.FormatError(err, false, false))
	}
	return nil
}

// DecodeFile reads path and decodes it with Decode. Open errors are
// returned as is, so callers can test them with errors.Is(err, fs.ErrNotExist).
func DecodeFile(path string, v any) error {
	f, err := os.Open(path) // #nosec G304 -- caller-provided config path
	if err != nil {
		return err
	}
	defer f.Close()

	// One byte over the limit is enough for Decode to reject it.
	data, err := io.ReadAll(io.LimitReader(f, int64(MaxInputSize)+1))
	if err != nil {
		return fmt.Errorf("yamlutil: reading %s: %w", path, err)
	}
	return Decode(data, v)
}
