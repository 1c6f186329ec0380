// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpusgen/internal/catalog"
	"github.com/pdiddy/corpusgen/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Rebuild the SQLite metadata catalog and print per-genre totals",
	Long: `Catalog reads the JSONL metadata sidecar written during generation and
records every story in the SQLite catalog at catalog_path, then prints
story, word and cost totals per genre. Records already in the catalog are
replaced, so the command can be run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().Bool("stats-only", false, "print totals without reading the sidecar")
	catalogCmd.Flags().Int("seeds", 10, "number of most used seed words to print (0 to skip)")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	statsOnly, _ := cmd.Flags().GetBool("stats-only")
	topSeeds, _ := cmd.Flags().GetInt("seeds")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cfg.CatalogPath == "" {
		return fmt.Errorf("%w: catalog_path is not set", config.ErrConfig)
	}

	store, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if !statsOnly {
		f, err := os.Open(cfg.MetadataPath)
		if err != nil {
			return fmt.Errorf("opening metadata sidecar: %w", err)
		}
		defer f.Close()
		if _, err := store.Ingest(ctx, f, out); err != nil {
			return err
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GENRE\tSTORIES\tWORDS\tCOST")
	for _, g := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t$%.4f\n", g.Genre, g.Stories, g.Words, g.Cost)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if topSeeds <= 0 {
		return nil
	}
	usage, err := store.SeedUsage(ctx, topSeeds)
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	fmt.Fprintln(tw, "SEED\tSTORIES")
	for _, c := range usage {
		fmt.Fprintf(tw, "%s\t%d\n", c.Seed, c.Stories)
	}
	return tw.Flush()
}
