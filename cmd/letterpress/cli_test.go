package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/petrel-labs/letterpress/document"
	"github.com/petrel-labs/letterpress/export"
)

func TestParseInputByExtension(t *testing.T) {
	exporter := export.New(nil)
	cmd := &cobra.Command{}

	doc, err := parseInput(cmd, exporter, "report.md", []byte("# Title\n\nBody text.\n"))
	if err != nil {
		t.Fatalf("markdown input: %v", err)
	}
	if len(doc.Blocks) == 0 {
		t.Fatalf("markdown produced no blocks")
	}

	doc, err = parseInput(cmd, exporter, "report.html", []byte("<p>Body text.</p>"))
	if err != nil {
		t.Fatalf("html input: %v", err)
	}
	if len(doc.Blocks) == 0 {
		t.Fatalf("html produced no blocks")
	}

	doc, err = parseInput(cmd, exporter, "notes.txt", []byte("1. Intro\nBody text here"))
	if err != nil {
		t.Fatalf("plain text input: %v", err)
	}
	if len(doc.Blocks) != 2 {
		t.Fatalf("plain text produced %d blocks, want 2", len(doc.Blocks))
	}
	if doc.Blocks[0].Kind != document.KindParagraph {
		t.Fatalf("unexpected first block kind %v", doc.Blocks[0].Kind)
	}
}

func TestBuildProviderUnknown(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := buildProvider("gemini", ""); err == nil {
		t.Fatalf("expected unknown provider to fail")
	}
	if _, err := buildProvider("openai", ""); err == nil || !strings.Contains(err.Error(), "API key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	flagConfig = ""
	registry, layouts, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(registry.Codes()) == 0 {
		t.Fatalf("no builtin brands")
	}
	if len(layouts) != 2 {
		t.Fatalf("expected portrait and landscape layouts, got %d", len(layouts))
	}
}
