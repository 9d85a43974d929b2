package export

import (
	"fmt"
	"io"
	"os"

	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/schema"
	"github.com/farmhand-data/scout.report/internal/security"
)

// Format selects an export serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Write serializes records in the given format.
func Write(w io.Writer, format Format, s *schema.Schema, records []record.Record) error {
	switch format {
	case FormatCSV:
		return CSV(w, s, records)
	case FormatJSON:
		return JSON(w, s, records)
	}
	return fmt.Errorf("export: unknown format %q", format)
}

// WriteFile serializes records to a file. The path must stay within the
// working directory or the system temp directory.
func WriteFile(path string, format Format, s *schema.Schema, records []record.Record) error {
	if err := security.ValidateExportPath(path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	if err := Write(f, format, s, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: close %s: %w", path, err)
	}
	return nil
}

// FileName builds a safe export filename from a schema name.
func FileName(schemaName string, format Format) string {
	return fmt.Sprintf("%s_export.%s", security.SanitizeFilename(schemaName), format)
}
