package fixture

import (
	"encoding/json"
	"io"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/fixturekit/errors"
)

// Format decodes one fixture file encoding. Implementations must be
// safe for concurrent use.
type Format interface {
	// Name identifies the format in logs and error messages.
	Name() string
	// Extensions lists the file extensions this format owns, with the
	// leading dot.
	Extensions() []string
	// Decode reads every record from one fixture file.
	Decode(r io.Reader) ([]Record, error)
}

var (
	formatMu sync.RWMutex
	formats  = make(map[string]Format)
)

// RegisterFormat registers a format under each of its extensions.
// Later registrations win, so callers can replace the built-in YAML
// and JSON formats.
func RegisterFormat(f Format) {
	formatMu.Lock()
	defer formatMu.Unlock()
	for _, ext := range f.Extensions() {
		formats[strings.ToLower(ext)] = f
	}
}

// FormatFor returns the format registered for the file's extension.
func FormatFor(filename string) (Format, error) {
	ext := strings.ToLower(path.Ext(filename))
	formatMu.RLock()
	f, ok := formats[ext]
	formatMu.RUnlock()
	if !ok {
		return nil, errors.Newf(errors.ErrCodeFormatUnknown,
			"no fixture format registered for %q", filename)
	}
	return f, nil
}

func init() {
	RegisterFormat(yamlFormat{})
	RegisterFormat(jsonFormat{})
}

type yamlFormat struct{}

func (yamlFormat) Name() string         { return "yaml" }
func (yamlFormat) Extensions() []string { return []string{".yaml", ".yml"} }

func (yamlFormat) Decode(r io.Reader) ([]Record, error) {
	var records []Record
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

type jsonFormat struct{}

func (jsonFormat) Name() string         { return "json" }
func (jsonFormat) Extensions() []string { return []string{".json"} }

func (jsonFormat) Decode(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}
