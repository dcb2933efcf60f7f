package convert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"iviweb/internal/markup"
	"iviweb/internal/screen"
	"iviweb/internal/system"
)

// ErrParse reports a style value that could not be converted.
var ErrParse = errors.New("unparseable style value")

// ParseError describes a failed unit conversion.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrParse, e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Palette maps style color names to SGR parameters. A Palette is
// immutable; share one across registries.
type Palette struct {
	fg map[string]int
	bg map[string]int
}

// NewPalette copies the given tables into a new Palette. Names are matched
// case-insensitively.
func NewPalette(fg, bg map[string]int) *Palette {
	p := &Palette{fg: make(map[string]int, len(fg)), bg: make(map[string]int, len(bg))}
	for k, v := range fg {
		p.fg[strings.ToLower(k)] = v
	}
	for k, v := range bg {
		p.bg[strings.ToLower(k)] = v
	}
	return p
}

var defaultPalette = NewPalette(
	map[string]int{
		"black":   30,
		"red":     31,
		"green":   32,
		"yellow":  33,
		"blue":    34,
		"magenta": 35,
		"purple":  35,
		"cyan":    36,
		"white":   37,
		"gray":    90,
		"grey":    90,
	},
	map[string]int{
		"black":   40,
		"red":     41,
		"green":   42,
		"yellow":  43,
		"blue":    44,
		"magenta": 45,
		"purple":  45,
		"cyan":    46,
		"white":   47,
		"gray":    100,
		"grey":    100,
	},
)

// DefaultPalette returns the built-in eight-color table plus grey.
func DefaultPalette() *Palette { return defaultPalette }

// Foreground returns the SGR parameter for a foreground color name.
func (p *Palette) Foreground(name string) (int, bool) {
	v, ok := p.fg[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// Background returns the SGR parameter for a background color name.
func (p *Palette) Background(name string) (int, bool) {
	v, ok := p.bg[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// Resolve turns an inline style into a prefix of escape codes. Foreground
// and background share one sequence. Unknown colors and values contribute
// nothing.
func (p *Palette) Resolve(st markup.Style) string {
	if len(st) == 0 {
		return ""
	}
	var params []string
	if v, ok := st.Get("color"); ok {
		if code, ok := p.Foreground(v); ok {
			params = append(params, strconv.Itoa(code))
		} else {
			system.Logger.Debug("unknown color", "value", v)
		}
	}
	bg, ok := st.Get("background")
	if !ok {
		bg, ok = st.Get("background-color")
	}
	if ok {
		if code, ok := p.Background(bg); ok {
			params = append(params, strconv.Itoa(code))
		} else {
			system.Logger.Debug("unknown background", "value", bg)
		}
	}
	var sb strings.Builder
	if len(params) > 0 {
		sb.WriteString("\x1b[" + strings.Join(params, ";") + "m")
	}
	if v, ok := st.Get("font-weight"); ok && isBold(v) {
		sb.WriteString(screen.Bold)
	}
	if v, ok := st.Get("font-style"); ok {
		switch {
		case isBold(v):
			sb.WriteString(screen.Bold)
		case strings.EqualFold(v, "italic"):
			sb.WriteString(screen.Italic)
		}
	}
	if v, ok := st.Get("text-decoration"); ok && strings.EqualFold(v, "line-through") {
		sb.WriteString(screen.Strikethrough)
	}
	return sb.String()
}

// ResolveStyle resolves st against the default palette.
func ResolveStyle(st markup.Style) string { return defaultPalette.Resolve(st) }

func isBold(v string) bool {
	return strings.EqualFold(v, "bold") || v == "700"
}

// ParseWidthOrHeight converts a size declaration into a scale factor.
// Percentages are fractions of the available space, rem assumes a 16 cell
// root size, vw/vh are relative to the screen and one px is one cell.
func ParseWidthOrHeight(s string, isWidth bool, screenW, screenH int) (float64, error) {
	in := strings.TrimSpace(strings.Trim(strings.TrimSpace(s), ";"))
	num := func(suffix string) (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(in, suffix)), 64)
		if err != nil {
			return 0, &ParseError{Input: s, Reason: "not a number"}
		}
		return v, nil
	}
	switch {
	case strings.HasSuffix(in, "%"):
		v, err := num("%")
		return v / 100, err
	case strings.HasSuffix(in, "rem"):
		v, err := num("rem")
		return (v / 100) * 16, err
	case strings.HasSuffix(in, "vw"), strings.HasSuffix(in, "vh"):
		v, err := num(in[len(in)-2:])
		if err != nil {
			return 0, err
		}
		if isWidth {
			return (v / 100) * float64(screenW), nil
		}
		return (v / 100) * float64(screenH), nil
	case strings.HasSuffix(in, "px"):
		v, err := num("px")
		if err != nil {
			return 0, err
		}
		if screenW <= 0 {
			return 0, &ParseError{Input: s, Reason: "screen width unknown"}
		}
		return v / float64(screenW), nil
	default:
		return 0, &ParseError{Input: s, Reason: "unknown unit"}
	}
}

// scaleOrDefault is ParseWidthOrHeight with a fallback of 1 on failure.
func scaleOrDefault(s string, isWidth bool, screenW, screenH int) float64 {
	v, err := ParseWidthOrHeight(s, isWidth, screenW, screenH)
	if err != nil {
		system.Logger.Debug("using full scale", "err", err)
		return 1
	}
	return v
}

// cellWidth reads a width declaration as a number of cells: bare numbers
// are taken literally, units are scaled against the screen width.
func cellWidth(st markup.Style, screenW, screenH int) (int, bool) {
	raw, ok := st.Get("width")
	if !ok {
		return 0, false
	}
	if n, err := strconv.Atoi(strings.TrimSpace(strings.Trim(raw, ";"))); err == nil {
		return n, true
	}
	v, err := ParseWidthOrHeight(raw, true, screenW, screenH)
	if err != nil {
		system.Logger.Debug("ignoring width", "err", err)
		return 0, false
	}
	return int(v*float64(screenW) + 0.5), true
}
