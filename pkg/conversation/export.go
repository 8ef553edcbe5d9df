package conversation

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatYAML ExportFormat = "yaml"
)

// FormatFromFilename picks the export format from the file extension, defaulting to JSON.
func FormatFromFilename(filename string) ExportFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return ExportFormatYAML
	default:
		return ExportFormatJSON
	}
}

// Export writes the current snapshot of the log to w.
func (l *Log) Export(w io.Writer, format ExportFormat) error {
	turns := l.Snapshot()
	switch format {
	case ExportFormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(turns); err != nil {
			return errors.Wrap(err, "could not encode transcript as yaml")
		}
		return encoder.Close()
	case ExportFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(turns); err != nil {
			return errors.Wrap(err, "could not encode transcript as json")
		}
		return nil
	default:
		return errors.Errorf("unknown export format %q", format)
	}
}

// SaveToFile exports the transcript to filename. The transcript is never read
// back; this is an export, not a session store.
func (l *Log) SaveToFile(filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "could not create directory %s", dir)
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	return l.Export(f, FormatFromFilename(filename))
}
