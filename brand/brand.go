// Package brand holds the static per-brand metadata and the default layout
// geometry consumed by both rendering engines. Everything here is read-only
// input to a render; engines never mutate it.
package brand

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Color is an opaque sRGB color.
type Color struct {
	R, G, B uint8
}

// Hex renders the color as RRGGBB, the form the word-package markup wants.
func (c Color) Hex() string { return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B) }

// UnmarshalYAML accepts "#RRGGBB" or "RRGGBB".
func (c *Color) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return fmt.Errorf("brand: bad color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("brand: bad color %q", s)
	}
	c.R = uint8(v >> 16)
	c.G = uint8(v >> 8)
	c.B = uint8(v)
	return nil
}

// Brand is one organizational brand's static configuration.
type Brand struct {
	Code           string `yaml:"code"`
	DisplayName    string `yaml:"display_name"`
	LegalEntity    string `yaml:"legal_entity"`
	RegistrationID string `yaml:"registration_id"`
	Primary        Color  `yaml:"primary"`
	Secondary      Color  `yaml:"secondary"`
	PDFTemplateURL string `yaml:"pdf_template_url"`
	DocxTemplate   string `yaml:"docx_template_url"`
	// FontURL points at an optional TrueType file measured instead of the
	// core Helvetica set. Empty means the built-in metrics.
	FontURL string `yaml:"font_url"`
}

// builtin is the compiled-in brand table. Deployment-specific overrides come
// from the YAML loader.
var builtin = map[string]Brand{
	"NOVA": {
		Code:           "NOVA",
		DisplayName:    "Nova Dynamics",
		LegalEntity:    "Nova Dynamics GmbH",
		RegistrationID: "HRB 104229",
		Primary:        Color{R: 0x0B, G: 0x3D, B: 0x91},
		Secondary:      Color{R: 0xF2, G: 0xA9, B: 0x00},
		PDFTemplateURL: "https://assets.nova-dynamics.example/templates/report.pdf",
		DocxTemplate:   "https://assets.nova-dynamics.example/templates/report.docx",
	},
	"ARTEM": {
		Code:           "ARTEM",
		DisplayName:    "Artemis Labs",
		LegalEntity:    "Artemis Laboratories B.V.",
		RegistrationID: "KvK 77311902",
		Primary:        Color{R: 0x14, G: 0x55, B: 0x3E},
		Secondary:      Color{R: 0xD4, G: 0x45, B: 0x00},
		PDFTemplateURL: "https://assets.artemislabs.example/templates/report.pdf",
		DocxTemplate:   "https://assets.artemislabs.example/templates/report.docx",
	},
	"HELIO": {
		Code:           "HELIO",
		DisplayName:    "Heliotrope",
		LegalEntity:    "Heliotrope Systems Ltd.",
		RegistrationID: "Company No. 09472215",
		Primary:        Color{R: 0x5A, G: 0x18, B: 0x6B},
		Secondary:      Color{R: 0x00, G: 0xA6, B: 0xA6},
		PDFTemplateURL: "https://assets.heliotrope.example/templates/report.pdf",
		DocxTemplate:   "https://assets.heliotrope.example/templates/report.docx",
		FontURL:        "https://assets.heliotrope.example/fonts/heliotrope-text.ttf",
	},
}

// Registry resolves brand codes. A nil overrides map behaves like the
// builtin table alone.
type Registry struct {
	overrides map[string]Brand
}

// NewRegistry returns a registry with optional overrides layered over the
// builtin table. Overrides replace whole brand entries.
func NewRegistry(overrides map[string]Brand) *Registry {
	return &Registry{overrides: overrides}
}

// Lookup resolves a brand code.
func (r *Registry) Lookup(code string) (Brand, error) {
	if r != nil && r.overrides != nil {
		if b, ok := r.overrides[code]; ok {
			return b, nil
		}
	}
	if b, ok := builtin[code]; ok {
		return b, nil
	}
	return Brand{}, fmt.Errorf("brand: unknown brand code %q", code)
}

// Codes lists all known brand codes in sorted order.
func (r *Registry) Codes() []string {
	set := make(map[string]bool)
	for c := range builtin {
		set[c] = true
	}
	if r != nil {
		for c := range r.overrides {
			set[c] = true
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
