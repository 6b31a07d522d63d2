package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petrel-labs/letterpress/ai"
	"github.com/petrel-labs/letterpress/brand"
	"github.com/petrel-labs/letterpress/document"
	"github.com/petrel-labs/letterpress/export"
	"github.com/petrel-labs/letterpress/observability"
)

var (
	renderFormat      string
	renderBrand       string
	renderTitle       string
	renderSubtitle    string
	renderOrientation string
	renderOutput      string
	renderProvider    string
	renderModel       string
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a document file to PDF or docx",
	Long: `Render a document file onto the brand's template.

Markdown (.md) and HTML (.html) inputs keep their structure; any other
file is treated as plain text and lines are labeled heading/body by the
configured classification provider, falling back to a local heuristic.

Classification providers read their API keys from the environment:
OPENAI_API_KEY for openai, ANTHROPIC_API_KEY for anthropic.

Examples:
  letterpress render report.md --brand NOVA --title "Quarterly Report"
  letterpress render notes.txt --format docx --brand HELIO --provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "pdf", "output format (pdf, docx)")
	renderCmd.Flags().StringVarP(&renderBrand, "brand", "b", "NOVA", "brand code")
	renderCmd.Flags().StringVarP(&renderTitle, "title", "t", "", "document title")
	renderCmd.Flags().StringVar(&renderSubtitle, "subtitle", "", "document subtitle")
	renderCmd.Flags().StringVar(&renderOrientation, "orientation", "portrait", "page orientation (portrait, landscape)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output path (default: generated filename)")
	renderCmd.Flags().StringVar(&renderProvider, "provider", "", "line classification provider (openai, anthropic)")
	renderCmd.Flags().StringVar(&renderModel, "model", "", "classification model name")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	input, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	registry, layouts, err := loadConfig()
	if err != nil {
		return err
	}
	logger := observability.NewTextLogger(cmd.ErrOrStderr())
	logger.Verbose = flagVerbose

	exporter := export.New(logger)
	exporter.Brands = registry
	exporter.Layouts = layouts

	if renderProvider != "" {
		provider, err := buildProvider(renderProvider, renderModel)
		if err != nil {
			return err
		}
		exporter.Classifier = provider
		exporter.Generator = provider
	}

	title := renderTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	}

	doc, err := parseInput(cmd, exporter, inputPath, input)
	if err != nil {
		return err
	}

	orientation := brand.Portrait
	if strings.EqualFold(renderOrientation, "landscape") {
		orientation = brand.Landscape
	}
	req := export.Request{
		Document:    doc,
		BrandCode:   renderBrand,
		Title:       title,
		Subtitle:    renderSubtitle,
		Orientation: orientation,
	}

	var res *export.Result
	switch strings.ToLower(renderFormat) {
	case "pdf":
		res, err = exporter.RenderPDF(cmd.Context(), req)
	case "docx":
		res, err = exporter.RenderDocx(cmd.Context(), req)
	default:
		return fmt.Errorf("unknown format %q (want pdf or docx)", renderFormat)
	}
	if err != nil {
		return err
	}

	outPath := renderOutput
	if outPath == "" {
		outPath = res.Filename
	}
	if err := os.WriteFile(outPath, res.Bytes, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", outPath, len(res.Bytes))
	return nil
}

func parseInput(cmd *cobra.Command, exporter *export.Exporter, path string, input []byte) (*document.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		doc, err := document.FromMarkdown(input)
		if err != nil {
			return nil, fmt.Errorf("parse markdown: %w", err)
		}
		return doc, nil
	case ".html", ".htm":
		doc, err := document.FromHTML(strings.NewReader(string(input)))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		return doc, nil
	default:
		return exporter.DocumentFromText(cmd.Context(), string(input)), nil
	}
}

func buildProvider(name, model string) (ai.Provider, error) {
	switch name {
	case "openai":
		return ai.NewOpenAIProvider(ai.OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  model,
		})
	case "anthropic":
		return ai.NewAnthropicProvider(ai.AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  model,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q (want openai or anthropic)", name)
	}
}
