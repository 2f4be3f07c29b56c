package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	odatasearch "github.com/nlstn/go-odata-search"
	"github.com/nlstn/go-odata-search/internal/blugeindex"
	"github.com/nlstn/go-odata-search/internal/observability"
)

// filterOutput is the JSON printed by the filter command
type filterOutput struct {
	Filter      odatasearch.FilterNode `json:"filter"`
	Fingerprint string                 `json:"fingerprint"`
}

func newFilterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "filter <expression>",
		Short:   "Translate a $filter expression into a filter tree",
		Example: `  odatasearch filter --schema article.yaml "Name eq 'Home' and Price gt 5"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := a.parseFilter(cmd, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), filterOutput{
				Filter:      filter,
				Fingerprint: observability.FormatFingerprint(odatasearch.Fingerprint(filter)),
			})
		},
	}
}

func newOrderByCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "orderby <expression>",
		Short:   "Translate an $orderby expression into sort criteria",
		Example: `  odatasearch orderby "Created desc, Name"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := a.schema(cmd.Context())
			if err != nil {
				return err
			}
			translator, err := a.translator(schema)
			if err != nil {
				return err
			}
			criteria, err := translator.ParseOrderByContext(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), criteria)
		},
	}
}

func newCompileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "compile <expression>",
		Short:   "Show the bluge query a $filter expression executes as",
		Example: `  odatasearch compile "contains(tolower(Name), 'start')"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := a.parseFilter(cmd, args[0])
			if err != nil {
				return err
			}
			explained, err := blugeindex.Explain(filter)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), explained)
			return err
		},
	}
}

func (a *app) parseFilter(cmd *cobra.Command, text string) (odatasearch.FilterNode, error) {
	schema, err := a.schema(cmd.Context())
	if err != nil {
		return nil, err
	}
	translator, err := a.translator(schema)
	if err != nil {
		return nil, err
	}
	return translator.ParseFilterContext(cmd.Context(), text)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
