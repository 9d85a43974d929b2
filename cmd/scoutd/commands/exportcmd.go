package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/farmhand-data/scout.report/internal/export"
	"github.com/farmhand-data/scout.report/internal/record"
	"github.com/farmhand-data/scout.report/internal/store"
)

var (
	exportFormat          string
	exportOut             string
	exportIncludeArchived bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the active schema's records to a file",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format (csv or json)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default <schema>_export.<format> in the export dir)")
	exportCmd.Flags().BoolVar(&exportIncludeArchived, "include-archived", false, "include archived records")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format := export.Format(exportFormat)
	if format != export.FormatCSV && format != export.FormatJSON {
		return fmt.Errorf("unknown export format %q", exportFormat)
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	sc, err := db.ActiveSchema(cmd.Context())
	if errors.Is(err, store.ErrNotFound) {
		return errors.New("no active schema; import one first")
	}
	if err != nil {
		return err
	}

	hash, err := sc.Hash()
	if err != nil {
		return err
	}
	stored, err := db.ListRecords(cmd.Context(), hash, exportIncludeArchived)
	if err != nil {
		return err
	}
	records := make([]record.Record, len(stored))
	for i, sr := range stored {
		records[i] = sr.Record
	}

	out := exportOut
	if out == "" {
		out = filepath.Join(cfg.Export.Dir, export.FileName(sc.Name, format))
	}
	if err := export.WriteFile(out, format, sc, records); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(records), out)
	return nil
}
