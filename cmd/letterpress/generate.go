package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petrel-labs/letterpress/brand"
	"github.com/petrel-labs/letterpress/export"
	"github.com/petrel-labs/letterpress/observability"
)

var (
	generateFormat   string
	generateBrand    string
	generateTitle    string
	generateSubtitle string
	generateOutput   string
	generateProvider string
	generateModel    string
)

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate document content and render it",
	Long: `Generate body text from a prompt via the configured provider, then
render it onto the brand's template like a plain-text input.

Example:
  letterpress generate "Summarize Q3 results" --provider anthropic \
    --brand NOVA --title "Q3 Summary" --format pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", "pdf", "output format (pdf, docx)")
	generateCmd.Flags().StringVarP(&generateBrand, "brand", "b", "NOVA", "brand code")
	generateCmd.Flags().StringVarP(&generateTitle, "title", "t", "Generated Document", "document title")
	generateCmd.Flags().StringVar(&generateSubtitle, "subtitle", "", "document subtitle")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "output path (default: generated filename)")
	generateCmd.Flags().StringVar(&generateProvider, "provider", "openai", "generation provider (openai, anthropic)")
	generateCmd.Flags().StringVar(&generateModel, "model", "", "generation model name")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	registry, layouts, err := loadConfig()
	if err != nil {
		return err
	}
	logger := observability.NewTextLogger(cmd.ErrOrStderr())
	logger.Verbose = flagVerbose

	provider, err := buildProvider(generateProvider, generateModel)
	if err != nil {
		return err
	}

	exporter := export.New(logger)
	exporter.Brands = registry
	exporter.Layouts = layouts
	exporter.Classifier = provider
	exporter.Generator = provider

	body, err := exporter.GenerateContent(cmd.Context(), args[0], generateTitle, generateSubtitle)
	if err != nil {
		return err
	}

	orientation := brand.Portrait
	req := export.Request{
		Document:    exporter.DocumentFromText(cmd.Context(), body),
		BrandCode:   generateBrand,
		Title:       generateTitle,
		Subtitle:    generateSubtitle,
		Orientation: orientation,
	}

	var res *export.Result
	switch strings.ToLower(generateFormat) {
	case "pdf":
		res, err = exporter.RenderPDF(cmd.Context(), req)
	case "docx":
		res, err = exporter.RenderDocx(cmd.Context(), req)
	default:
		return fmt.Errorf("unknown format %q (want pdf or docx)", generateFormat)
	}
	if err != nil {
		return err
	}

	outPath := generateOutput
	if outPath == "" {
		outPath = res.Filename
	}
	if err := os.WriteFile(outPath, res.Bytes, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", outPath, len(res.Bytes))
	return nil
}
