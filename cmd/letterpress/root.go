package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/petrel-labs/letterpress/brand"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "letterpress",
	Short: "Render documents onto branded PDF and word templates",
	Long: `letterpress lays rich-text documents (markdown, HTML, or plain text)
out onto branded template pages and emits PDF or word-package output.

Brand and layout overrides load from a YAML config file; set template
URLs and colors per brand code there.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "brand/layout config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	rootCmd.AddCommand(brandsCmd)
}

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List configured brand codes",
	RunE:  runBrands,
}

func runBrands(cmd *cobra.Command, args []string) error {
	registry, _, err := loadConfig()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "CODE\tNAME\tLEGAL ENTITY")
	for _, code := range registry.Codes() {
		b, err := registry.Lookup(code)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Code, b.DisplayName, b.LegalEntity)
	}
	return nil
}

func loadConfig() (*brand.Registry, map[brand.Orientation]brand.Layout, error) {
	if flagConfig == "" {
		return brand.NewRegistry(nil), map[brand.Orientation]brand.Layout{
			brand.Portrait:  brand.DefaultLayout(brand.Portrait),
			brand.Landscape: brand.DefaultLayout(brand.Landscape),
		}, nil
	}
	if _, err := os.Stat(flagConfig); err != nil {
		return nil, nil, fmt.Errorf("config file: %w", err)
	}
	return brand.Load(flagConfig)
}
