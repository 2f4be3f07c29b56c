package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	odatasearch "github.com/nlstn/go-odata-search"
	"github.com/nlstn/go-odata-search/internal/config"
	"github.com/nlstn/go-odata-search/internal/metadata"
	"github.com/nlstn/go-odata-search/internal/schemastore"
)

// app holds the state shared by all subcommands
type app struct {
	configPath string
	schemaPath string
	schemaName string

	cfg    *config.Config
	logger *slog.Logger
}

// flagBindings maps config keys to the flags overriding them
var flagBindings = map[string]string{
	"convention": "convention",
	"log.level":  "log-level",
	"log.format": "log-format",
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "odatasearch",
		Short: "Translate OData $filter and $orderby into search index queries",
		Long: `odatasearch translates the OData $filter and $orderby query options of a
content API into filter trees and sort criteria for a search index.

Configuration is read from odatasearch.yaml in the working directory (or the
file given by --config) and ODATASEARCH_* environment variables.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./odatasearch.yaml)")
	flags.StringVar(&a.schemaPath, "schema", "", "YAML schema of the content type")
	flags.StringVar(&a.schemaName, "schema-name", "", "name of a schema in the schema store")
	flags.String("convention", "verbatim", "field naming convention: verbatim or typesuffix")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")

	cmd.AddCommand(
		newFilterCmd(a),
		newOrderByCmd(a),
		newCompileCmd(a),
		newSchemaCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// setup loads the configuration and the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v := config.New(a.configPath)
	for key, name := range flagBindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	for key, name := range localFlagBindings(cmd) {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// localFlagBindings returns the config bindings of a subcommand. Its
// Annotations map flag names to config keys.
func localFlagBindings(cmd *cobra.Command) map[string]string {
	bindings := map[string]string{}
	for name, key := range cmd.Annotations {
		bindings[key] = name
	}
	return bindings
}

// schema returns the schema named by --schema or --schema-name. Without
// either, every property is accepted as an open property.
func (a *app) schema(ctx context.Context) (*metadata.Schema, error) {
	switch {
	case a.schemaPath != "" && a.schemaName != "":
		return nil, fmt.Errorf("--schema and --schema-name cannot be combined")
	case a.schemaPath != "":
		return loadSchemaFile(a.schemaPath)
	case a.schemaName != "":
		store, err := a.openStore()
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(ctx, a.schemaName)
	default:
		return nil, nil
	}
}

func (a *app) openStore() (*schemastore.Store, error) {
	return schemastore.Open(a.cfg.Store.Driver, a.cfg.Store.DSN)
}

func (a *app) translator(schema *metadata.Schema) (*odatasearch.Translator, error) {
	conv, err := odatasearch.ConventionByName(a.cfg.Convention)
	if err != nil {
		return nil, err
	}
	return odatasearch.NewTranslator(schema,
		odatasearch.WithNaming(a.cfg.SearchNaming()),
		odatasearch.WithConvention(conv),
		odatasearch.WithLogger(a.logger),
	)
}
