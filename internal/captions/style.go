// Package captions is the caption styling and selection slice: the
// settings dialog's commit/discard model, persisted styling, and the
// persisted language selection restored across embeds.
package captions

// Style is the caption rendering style the settings dialog edits.
// Values stay strings end to end; the shell converts at the edge.
type Style struct {
	FontPercent       string `json:"fontPercent"`
	FontFamily        string `json:"fontFamily"`
	EdgeStyle         string `json:"edgeStyle"`
	Color             string `json:"color"`
	FontOpacity       string `json:"fontOpacity"`
	BackgroundColor   string `json:"backgroundColor"`
	BackgroundOpacity string `json:"backgroundOpacity"`
	WindowColor       string `json:"windowColor"`
	WindowOpacity     string `json:"windowOpacity"`
}

// DefaultStyle is white-on-black, no window, standard size.
func DefaultStyle() Style {
	return Style{
		FontPercent:       "1.00",
		FontFamily:        "proportionalSansSerif",
		EdgeStyle:         "none",
		Color:             "#FFF",
		FontOpacity:       "1",
		BackgroundColor:   "#000",
		BackgroundOpacity: "1",
		WindowColor:       "#000",
		WindowOpacity:     "0",
	}
}

// StylePatch is a partial style edit; nil fields stay untouched. The
// settings dialog emits one patch per control change.
type StylePatch struct {
	FontPercent       *string `json:"fontPercent"`
	FontFamily        *string `json:"fontFamily"`
	EdgeStyle         *string `json:"edgeStyle"`
	Color             *string `json:"color"`
	FontOpacity       *string `json:"fontOpacity"`
	BackgroundColor   *string `json:"backgroundColor"`
	BackgroundOpacity *string `json:"backgroundOpacity"`
	WindowColor       *string `json:"windowColor"`
	WindowOpacity     *string `json:"windowOpacity"`
}

// Apply merges the patch over a style.
func (p StylePatch) Apply(s Style) Style {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.FontPercent, p.FontPercent)
	set(&s.FontFamily, p.FontFamily)
	set(&s.EdgeStyle, p.EdgeStyle)
	set(&s.Color, p.Color)
	set(&s.FontOpacity, p.FontOpacity)
	set(&s.BackgroundColor, p.BackgroundColor)
	set(&s.BackgroundOpacity, p.BackgroundOpacity)
	set(&s.WindowColor, p.WindowColor)
	set(&s.WindowOpacity, p.WindowOpacity)
	return s
}
