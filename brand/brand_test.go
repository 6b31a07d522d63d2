package brand

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(nil)
	b, err := r.Lookup("NOVA")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if b.DisplayName != "Nova Dynamics" {
		t.Fatalf("display name = %q", b.DisplayName)
	}
	if _, err := r.Lookup("NOPE"); err == nil {
		t.Fatalf("unknown code must fail")
	}
}

func TestColorHex(t *testing.T) {
	c := Color{R: 0x0B, G: 0x3D, B: 0x91}
	if c.Hex() != "0B3D91" {
		t.Fatalf("hex = %q", c.Hex())
	}
}

func TestLoadOverridesAndEnvExpansion(t *testing.T) {
	os.Setenv("TEST_TPL_URL", "https://assets.example.com/nova.pdf")
	defer os.Unsetenv("TEST_TPL_URL")

	dir := t.TempDir()
	path := filepath.Join(dir, "brands.yaml")
	content := `brands:
  NOVA:
    code: NOVA
    display_name: Nova Override
    primary: "#112233"
    secondary: "445566"
    pdf_template_url: ${TEST_TPL_URL}
layouts:
  portrait:
    page_width: 595.28
    page_height: 841.89
    body:
      x: 50
      y: 100
      width: 495
      height: 690
      font_size: 10
      line_height: 14
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	reg, layouts, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, err := reg.Lookup("NOVA")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if b.DisplayName != "Nova Override" {
		t.Fatalf("override not applied: %q", b.DisplayName)
	}
	if b.Primary.Hex() != "112233" || b.Secondary.Hex() != "445566" {
		t.Fatalf("colors = %s / %s", b.Primary.Hex(), b.Secondary.Hex())
	}
	if b.PDFTemplateURL != "https://assets.example.com/nova.pdf" {
		t.Fatalf("env expansion failed: %q", b.PDFTemplateURL)
	}
	if layouts[Portrait].Body.Width != 495 {
		t.Fatalf("layout override body width = %v", layouts[Portrait].Body.Width)
	}
	// Untouched orientation keeps its default.
	if layouts[Landscape].Body.Width != DefaultLayout(Landscape).Body.Width {
		t.Fatalf("landscape default lost")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	reg, layouts, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := reg.Lookup("ARTEM"); err != nil {
		t.Fatalf("builtin table lost: %v", err)
	}
	if layouts[Portrait].PageHeight != 841.89 {
		t.Fatalf("default portrait layout missing")
	}
}
