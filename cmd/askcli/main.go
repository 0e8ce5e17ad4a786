// Package main provides an offline CLI for the question parser.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"costa-assist/internal/model"
	"costa-assist/internal/parser"
	"costa-assist/internal/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var locale string

	root := &cobra.Command{
		Use:   "askcli",
		Short: "Parse property questions into search filters",
		Long: `askcli runs the question parser without any backend.

  askcli parse "3 bed villa in Ronda under 300k"
  askcli answer "apartments near Marbella" --locale es`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&locale, "locale", "l", parser.DefaultLocale, "site locale used in links")

	root.AddCommand(newParseCmd(&locale), newAnswerCmd(&locale))
	return root
}

func newParseCmd(locale *string) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <question>",
		Short: "Print the filters, link, summary and region for a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			loc := parser.NormalizeLocale(*locale)
			filters := parser.ExtractFilters(question)

			out := &model.ParseResponse{
				Filters: filters,
				Link:    parser.BuildLink(filters, loc),
				Summary: parser.BuildSummary(filters),
			}
			if region, ok := parser.ResolveRegion(question); ok {
				out.Region = &region
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newAnswerCmd(locale *string) *cobra.Command {
	var filtersJSON string

	cmd := &cobra.Command{
		Use:   "answer <question>",
		Short: "Compose the reply the correction endpoint would return",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filters *model.ParsedFilters
			if filtersJSON != "" {
				filters = &model.ParsedFilters{}
				if err := json.Unmarshal([]byte(filtersJSON), filters); err != nil {
					return fmt.Errorf("invalid --filters: %w", err)
				}
				if err := filters.Validate(); err != nil {
					return fmt.Errorf("invalid --filters: %w", err)
				}
			}

			answer := parser.ComposeAnswer(strings.Join(args, " "), parser.NormalizeLocale(*locale), filters)
			return printJSON(cmd.OutOrStdout(), answer)
		},
	}
	cmd.Flags().StringVar(&filtersJSON, "filters", "", "use these filters (JSON) instead of parsing the question")
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	s, err := utils.PrettyPrintJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}
