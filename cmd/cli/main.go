// Package main implements the command line tools for classifying queries,
// highlighting pages and searching a built site.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/filter"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/highlight"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/libs/obs"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/phrase"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/db"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/search"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/state"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:          "phrasesearch",
		Short:        "Phrase search tools for Sphinx sites",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			obs.InitLogger(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	root.AddCommand(newClassifyCmd(), newHighlightCmd(), newIndexCmd(), newSearchCmd())
	return root
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify QUERY",
		Short: "Show how a query is matched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), phrase.Classify(args[0]))
		},
	}
}

func newHighlightCmd() *cobra.Command {
	var phrases []string

	cmd := &cobra.Command{
		Use:   "highlight FILE",
		Short: "Mark phrases in an HTML page and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = in.Close() }()

			root, err := highlight.Parse(in)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			n := highlight.Apply(root, lowerAll(phrases))
			page, err := highlight.Render(root)
			if err != nil {
				return err
			}

			logger := obs.Logger("cli")
			logger.Info().Int("marked", n).Msg("page highlighted")
			_, err = io.WriteString(cmd.OutOrStdout(), page)
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&phrases, "phrase", "p", nil, "phrase to mark (repeatable)")
	_ = cmd.MarkFlagRequired("phrase")
	return cmd
}

func newIndexCmd() *cobra.Command {
	var site, suffix string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "List the documents indexed from a built site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, err := search.LoadDir(os.DirFS(site), suffix, search.DefaultExcludes)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range idx.DocNames() {
				_, _ = fmt.Fprintln(out, name)
			}
			_, err = fmt.Fprintf(out, "%d documents\n", idx.Count())
			return err
		},
	}
	cmd.Flags().StringVar(&site, "site", "_build/html", "built HTML site directory")
	cmd.Flags().StringVar(&suffix, "suffix", ".html", "page file suffix")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var site, suffix string

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Run a phrase-filtered search against a built site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := search.LoadDir(os.DirFS(site), suffix, search.DefaultExcludes)
			if err != nil {
				return err
			}

			logger := obs.Logger("cli")
			service := filter.NewService(search.NewHolder(idx), filter.NewDirFetcher(site),
				filter.Options{FileSuffix: suffix}, logger)
			st := state.NewSession(db.NewMemStore(), "cli", "cli", state.DefaultSessionTTL)

			out := cmd.OutOrStdout()
			display := func(results []search.Result, count int, highlightTerms, _ search.TermSet) {
				for _, r := range results {
					_, _ = fmt.Fprintf(out, "%s%s%s\t%s\n", r.DocName, suffix, r.Anchor, r.Title)
				}
				_, _ = fmt.Fprintf(out, "%d results, highlighting %s\n", count, strings.Join(highlightTerms.Sorted(), ", "))
			}

			_, err = service.Query(context.Background(), st, args[0], display)
			return err
		},
	}
	cmd.Flags().StringVar(&site, "site", "_build/html", "built HTML site directory")
	cmd.Flags().StringVar(&suffix, "suffix", ".html", "page file suffix")
	return cmd
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
