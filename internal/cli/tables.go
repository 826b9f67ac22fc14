package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-norms/internal/norms/registry"
	"github.com/mind-engage/mindengage-norms/internal/storage"
)

func (a *app) tablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Check, export and import normative tables",
	}
	cmd.AddCommand(a.tablesCheckCmd(), a.tablesExportCmd(), a.tablesImportCmd())
	return cmd
}

func (a *app) tablesCheckCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load the configured tables and report skipped definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, warnings, err := a.loadTables(cmd.Context())
			if err != nil {
				return err
			}
			msgs := make([]string, 0, len(warnings))
			for _, w := range warnings {
				msgs = append(msgs, w.String())
			}
			if err := writeJSON(cmd.OutOrStdout(), map[string]any{
				"source":   a.source(),
				"bands":    store.Bands(),
				"warnings": msgs,
			}); err != nil {
				return err
			}
			if strict && len(warnings) > 0 {
				return fmt.Errorf("%d table warnings", len(warnings))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any definition was skipped")
	return cmd
}

func (a *app) tablesExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export DIR",
		Short: "Write the embedded tables and their manifest to DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, names, err := registry.EmbeddedFiles()
			if err != nil {
				return err
			}
			bs, err := storage.NewFSStore(args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				if _, err := bs.Put(name, bytes.NewReader(files[name])); err != nil {
					return fmt.Errorf("write %s: %w", name, err)
				}
			}
			m, err := json.MarshalIndent(registry.Manifest{Tables: names}, "", "  ")
			if err != nil {
				return err
			}
			if _, err := bs.Put(registry.ManifestFile, bytes.NewReader(m)); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"dir": bs.Base(), "tables": names})
		},
	}
}

func (a *app) tablesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy the tables of --source (embedded or dir) into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var bs storage.BlobStore
			switch a.source() {
			case registry.SourceDB:
				return errors.New("import reads from embedded or dir, not db")
			case registry.SourceDir:
				fs, err := storage.NewFSStore(a.v.GetString("tables"))
				if err != nil {
					return err
				}
				bs = fs
			}
			defs, err := registry.Load(ctx, a.source(), bs, nil)
			if err != nil {
				return err
			}

			dbh, err := a.openDB(ctx)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer dbh.Close()

			ids := make([]string, 0, len(defs))
			for i, d := range defs {
				id, err := registry.Save(ctx, dbh, i, d.Raw)
				if err != nil {
					return fmt.Errorf("%s: %w", d.Source, err)
				}
				ids = append(ids, id)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"imported": ids})
		},
	}
}
