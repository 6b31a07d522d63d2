// Package export is the top-level render orchestration and the sole error
// boundary for one export request. It resolves the brand and layout,
// fetches the template, flattens the document, and drives the format
// engines. All mutable state is scoped to a single call; concurrent
// exports never share anything.
package export

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/petrel-labs/letterpress/ai"
	"github.com/petrel-labs/letterpress/brand"
	"github.com/petrel-labs/letterpress/docx"
	"github.com/petrel-labs/letterpress/document"
	"github.com/petrel-labs/letterpress/flatten"
	"github.com/petrel-labs/letterpress/metrics"
	"github.com/petrel-labs/letterpress/numbering"
	"github.com/petrel-labs/letterpress/observability"
	"github.com/petrel-labs/letterpress/pdfrender"
	"github.com/petrel-labs/letterpress/template"
)

// PDFMIMEType is the content type of PDF results.
const PDFMIMEType = "application/pdf"

// Request describes one export. Orientation defaults to portrait and
// DefaultAlignment to left when zero.
type Request struct {
	Document         *document.Document
	BrandCode        string
	Title            string
	Subtitle         string
	Orientation      brand.Orientation
	DefaultAlignment document.Alignment
}

// Result is a finished export artifact.
type Result struct {
	Bytes    []byte
	MIME     string
	Filename string
}

// Exporter wires the engines together. Construct once, share freely;
// per-render state lives inside each call.
type Exporter struct {
	Brands     *brand.Registry
	Layouts    map[brand.Orientation]brand.Layout
	Fetcher    template.Fetcher
	Metrics    metrics.Provider
	Log        observability.Logger
	Classifier ai.Classifier // optional
	Generator  ai.Generator  // optional

	// Now is for tests; nil means time.Now.
	Now func() time.Time
}

// New returns an exporter with the builtin brand table, default layouts,
// HTTP template fetching, and Helvetica metrics.
func New(log observability.Logger) *Exporter {
	return &Exporter{
		Brands: brand.NewRegistry(nil),
		Layouts: map[brand.Orientation]brand.Layout{
			brand.Portrait:  brand.DefaultLayout(brand.Portrait),
			brand.Landscape: brand.DefaultLayout(brand.Landscape),
		},
		Fetcher: template.NewHTTPFetcher(),
		Metrics: metrics.Helvetica(),
		Log:     log,
	}
}

// RenderPDF produces the paginated PDF artifact for the request.
func (e *Exporter) RenderPDF(ctx context.Context, req Request) (*Result, error) {
	log := e.logger()
	start := time.Now()
	renderID := uuid.NewString()
	log.Info("pdf render started",
		observability.String("render", renderID),
		observability.String("brand", req.BrandCode))

	b, layout, blocks, err := e.prepare(req)
	if err != nil {
		return nil, err
	}
	tpl, err := e.Fetcher.Fetch(ctx, b.PDFTemplateURL)
	if err != nil {
		return nil, fmt.Errorf("fetch pdf template: %w", err)
	}

	engine := pdfrender.Engine{Metrics: e.metricsFor(ctx, b, log), Log: log}
	out, err := engine.Render(ctx, pdfrender.Params{
		Template: tpl,
		Layout:   layout,
		Brand:    b,
		Title:    req.Title,
		Subtitle: req.Subtitle,
	}, blocks)
	if err != nil {
		return nil, err
	}

	log.Info("pdf render finished",
		observability.String("render", renderID),
		observability.Int("bytes", len(out)),
		observability.Float64("seconds", time.Since(start).Seconds()))
	return &Result{
		Bytes:    out,
		MIME:     PDFMIMEType,
		Filename: e.filename(b.Code, req.Title, "pdf"),
	}, nil
}

// RenderDocx produces the word-package artifact for the request.
func (e *Exporter) RenderDocx(ctx context.Context, req Request) (*Result, error) {
	log := e.logger()
	start := time.Now()
	renderID := uuid.NewString()
	log.Info("docx render started",
		observability.String("render", renderID),
		observability.String("brand", req.BrandCode))

	b, layout, blocks, err := e.prepare(req)
	if err != nil {
		return nil, err
	}
	tpl, err := e.Fetcher.Fetch(ctx, b.DocxTemplate)
	if err != nil {
		return nil, fmt.Errorf("fetch docx template: %w", err)
	}

	engine := docx.Engine{Metrics: e.metricsFor(ctx, b, log), Log: log}
	out, err := engine.Render(ctx, docx.Params{
		Template: tpl,
		Layout:   layout,
		Brand:    b,
		Title:    req.Title,
		Subtitle: req.Subtitle,
	}, blocks)
	if err != nil {
		return nil, err
	}

	log.Info("docx render finished",
		observability.String("render", renderID),
		observability.Int("bytes", len(out)),
		observability.Float64("seconds", time.Since(start).Seconds()))
	return &Result{
		Bytes:    out,
		MIME:     docx.MIMEType,
		Filename: e.filename(b.Code, req.Title, "docx"),
	}, nil
}

// GenerateContent asks the configured generation service for body text.
// Errors surface to the caller; nothing is rendered or modified here.
func (e *Exporter) GenerateContent(ctx context.Context, prompt, title, subtitle string) (string, error) {
	if e.Generator == nil {
		return "", fmt.Errorf("no content generation service configured")
	}
	out, err := e.Generator.Generate(ctx, prompt, title, subtitle)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return out, nil
}

// prepare resolves brand and layout and flattens the document with a fresh
// normalizer. Counter state never leaks between renders.
func (e *Exporter) prepare(req Request) (brand.Brand, brand.Layout, []flatten.Block, error) {
	if req.Document == nil {
		return brand.Brand{}, brand.Layout{}, nil, fmt.Errorf("export request has no document")
	}
	b, err := e.Brands.Lookup(req.BrandCode)
	if err != nil {
		return brand.Brand{}, brand.Layout{}, nil, err
	}
	orientation := req.Orientation
	if orientation == "" {
		orientation = brand.Portrait
	}
	layout, ok := e.Layouts[orientation]
	if !ok {
		layout = brand.DefaultLayout(orientation)
	}
	align := req.DefaultAlignment
	if align == "" {
		align = document.AlignLeft
	}
	blocks := flatten.Flatten(req.Document, align, numbering.NewNormalizer())
	return b, layout, blocks, nil
}

// metricsFor returns the text metrics used for the brand. Brands with a
// font_url get measurements from their own typeface; fetch or parse
// failures fall back to the exporter's default provider rather than
// blocking the render.
func (e *Exporter) metricsFor(ctx context.Context, b brand.Brand, log observability.Logger) metrics.Provider {
	if b.FontURL == "" {
		return e.Metrics
	}
	data, err := e.Fetcher.Fetch(ctx, b.FontURL)
	if err != nil {
		log.Warn("brand font fetch failed",
			observability.String("brand", b.Code),
			observability.Error("error", err))
		return e.Metrics
	}
	font, err := metrics.LoadTrueType(b.Code, data)
	if err != nil {
		log.Warn("brand font unusable",
			observability.String("brand", b.Code),
			observability.Error("error", err))
		return e.Metrics
	}
	return metrics.SingleFace{Font: font}
}

func (e *Exporter) logger() observability.Logger {
	if e.Log == nil {
		return observability.NopLogger{}
	}
	return e.Log
}

var unsafeFilenameChars = regexp.MustCompile(`[\\/:*?"<>|\s]+`)

// filename formats <BrandCode>_<Title_underscored>_<ISO-date>.<ext>.
func (e *Exporter) filename(code, title, ext string) string {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	safe := unsafeFilenameChars.ReplaceAllString(title, "_")
	return fmt.Sprintf("%s_%s_%s.%s", code, safe, now().Format("2006-01-02"), ext)
}
