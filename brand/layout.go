package brand

// Region is a named rectangular text region in page points measured from
// the top-left corner, plus its text style.
type Region struct {
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	FontSize   float64 `yaml:"font_size"`
	LineHeight float64 `yaml:"line_height"`
	Color      Color   `yaml:"color"`
	Bold       bool    `yaml:"bold"`
}

// Layout is the per-orientation region set the PDF engine draws into. The
// engines take it by value and never mutate it.
type Layout struct {
	PageWidth  float64 `yaml:"page_width"`
	PageHeight float64 `yaml:"page_height"`

	Title          Region `yaml:"title"`
	Subtitle       Region `yaml:"subtitle"`
	HeaderTitle    Region `yaml:"header_title"`
	HeaderSubtitle Region `yaml:"header_subtitle"`
	Body           Region `yaml:"body"`
	PageNumber     Region `yaml:"page_number"`
}

// Orientation selects one of the two default layouts.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// DefaultLayout returns the built-in geometry for an orientation. Unknown
// values fall back to portrait.
func DefaultLayout(o Orientation) Layout {
	if o == Landscape {
		return Layout{
			PageWidth:  841.89,
			PageHeight: 595.28,
			Title:      Region{X: 60, Y: 180, Width: 500, Height: 120, FontSize: 28, LineHeight: 34, Bold: true},
			Subtitle:   Region{X: 60, Y: 0, Width: 500, Height: 40, FontSize: 16, LineHeight: 20},
			HeaderTitle: Region{
				X: 421, Y: 36, Width: 360, Height: 18, FontSize: 11, LineHeight: 14, Bold: true,
			},
			HeaderSubtitle: Region{
				X: 421, Y: 52, Width: 360, Height: 14, FontSize: 9, LineHeight: 12,
			},
			Body:       Region{X: 60, Y: 90, Width: 721, Height: 445, FontSize: 11, LineHeight: 16},
			PageNumber: Region{X: 711, Y: 565, Width: 100, Height: 16, FontSize: 9, LineHeight: 12},
		}
	}
	return Layout{
		PageWidth:  595.28,
		PageHeight: 841.89,
		Title:      Region{X: 57, Y: 240, Width: 480, Height: 160, FontSize: 30, LineHeight: 36, Bold: true},
		Subtitle:   Region{X: 57, Y: 0, Width: 480, Height: 40, FontSize: 16, LineHeight: 20},
		HeaderTitle: Region{
			X: 297, Y: 40, Width: 240, Height: 18, FontSize: 11, LineHeight: 14, Bold: true,
		},
		HeaderSubtitle: Region{
			X: 297, Y: 56, Width: 240, Height: 14, FontSize: 9, LineHeight: 12,
		},
		Body:       Region{X: 57, Y: 96, Width: 481, Height: 680, FontSize: 11, LineHeight: 16},
		PageNumber: Region{X: 465, Y: 805, Width: 90, Height: 16, FontSize: 9, LineHeight: 12},
	}
}
