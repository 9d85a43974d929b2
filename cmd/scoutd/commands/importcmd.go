package commands

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/farmhand-data/scout.report/internal/qr"
	"github.com/farmhand-data/scout.report/internal/schema"
	"github.com/farmhand-data/scout.report/internal/store"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import QR payloads from a file or stdin",
	Long: `Read scanned QR payloads, one per line, and store the records and
schemas they carry. Lines that fail to decode are reported and skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	in := os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var codes []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			codes = append(codes, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if len(codes) == 0 {
		return fmt.Errorf("no codes to import")
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	imported, failed := 0, 0
	for i, code := range codes {
		if t, ok := qr.PayloadType(code); ok && t == qr.TypeSchema {
			if err := importSchemaCode(cmd, db, code); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %v\n", i+1, err)
				failed++
			} else {
				imported++
			}
			continue
		}

		rec, err := qr.DecodeRecord(code)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %v\n", i+1, err)
			failed++
			continue
		}
		if _, err := db.InsertRecord(cmd.Context(), rec); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "line %d: store record: %v\n", i+1, err)
			failed++
			continue
		}
		imported++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d, failed %d\n", imported, failed)
	if failed > 0 && imported == 0 {
		return fmt.Errorf("all %d codes failed to import", failed)
	}
	return nil
}

func importSchemaCode(cmd *cobra.Command, db *store.DB, code string) error {
	sc, err := qr.DecodeSchema(code)
	if err != nil {
		return err
	}
	return activateSchema(cmd, db, sc)
}

func activateSchema(cmd *cobra.Command, db *store.DB, sc *schema.Schema) error {
	hash, err := db.SaveSchema(cmd.Context(), sc)
	if err != nil {
		return err
	}
	if err := db.SetActiveSchema(cmd.Context(), hash); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "activated schema %q (%s)\n", sc.Name, hash)
	return nil
}
