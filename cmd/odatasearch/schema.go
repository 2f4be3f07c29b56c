package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nlstn/go-odata-search/internal/metadata"
)

func newSchemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage content schemas in the schema store",
	}
	cmd.AddCommand(newSchemaImportCmd(a), newSchemaExportCmd(a), newSchemaListCmd(a), newSchemaDeleteCmd(a))
	return cmd
}

func newSchemaImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Store YAML schemas, replacing schemas of the same name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, path := range args {
				schema, err := loadSchemaFile(path)
				if err != nil {
					return err
				}
				if err := store.Save(cmd.Context(), schema); err != nil {
					return err
				}
				a.logger.Info("schema imported", "schema", schema.Name(), "file", path)
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", schema.Name())
			}
			return nil
		},
	}
}

func newSchemaExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a stored schema as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			schema, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				return metadata.WriteSchema(cmd.OutOrStdout(), schema)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := metadata.WriteSchema(f, schema); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write instead of stdout")
	return cmd
}

func newSchemaListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the names of stored schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			names, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newSchemaDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func loadSchemaFile(path string) (*metadata.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema: %w", err)
	}
	defer f.Close()

	schema, err := metadata.LoadSchema(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}
