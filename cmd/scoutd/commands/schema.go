package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/farmhand-data/scout.report/internal/qr"
	"github.com/farmhand-data/scout.report/internal/schema"
	"github.com/farmhand-data/scout.report/internal/store"
)

// schemaCmd groups schema management subcommands.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage form schemas",
}

var schemaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active schema as JSON",
	RunE:  runSchemaShow,
}

var schemaLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load a schema document from a JSON file and activate it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchemaLoad,
}

var schemaHashCmd = &cobra.Command{
	Use:   "hash <file>",
	Short: "Print the hash of a schema document",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchemaHash,
}

var schemaQRCmd = &cobra.Command{
	Use:   "qr",
	Short: "Print the active schema as a QR payload",
	RunE:  runSchemaQR,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaShowCmd, schemaLoadCmd, schemaHashCmd, schemaQRCmd)
}

func readSchemaFile(path string) (*schema.Schema, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc schema.Schema
	if err := json.Unmarshal(body, &sc); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}
	if len(sc.Sections) == 0 {
		return nil, errors.New("schema has no sections")
	}
	for _, sec := range sc.Sections {
		for _, f := range sec.Fields {
			if !f.Type.Valid() {
				return nil, fmt.Errorf("unknown field type %q", f.Type)
			}
		}
	}
	return &sc, nil
}

func runSchemaShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	sc, err := db.ActiveSchema(cmd.Context())
	if errors.Is(err, store.ErrNotFound) {
		return errors.New("no active schema")
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(sc)
}

func runSchemaLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sc, err := readSchemaFile(args[0])
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	return activateSchema(cmd, db, sc)
}

func runSchemaHash(cmd *cobra.Command, args []string) error {
	sc, err := readSchemaFile(args[0])
	if err != nil {
		return err
	}
	hash, err := sc.Hash()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}

func runSchemaQR(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	sc, err := db.ActiveSchema(cmd.Context())
	if errors.Is(err, store.ErrNotFound) {
		return errors.New("no active schema")
	}
	if err != nil {
		return err
	}
	code, err := qr.EncodeSchema(sc)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), code)
	return nil
}
