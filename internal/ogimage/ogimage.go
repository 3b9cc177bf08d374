// Package ogimage draws the social preview card (Open Graph image) for an
// article: a solid background, an accent bar, the wrapped title, an optional
// description and a footer line.
package ogimage

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	Width  = 1200
	Height = 630

	padding       = 80
	accentHeight  = 16
	titleSize     = 68
	bodySize      = 30
	titleMaxLines = 3
	bodyMaxLines  = 2
)

var ErrInvalidColor = errors.New("invalid hex color")

// Card is the text shown on one preview image.
type Card struct {
	Title       string
	Description string
	Footer      string
}

// Style holds the three colors of a card.
type Style struct {
	Background color.Color
	Foreground color.Color
	Accent     color.Color
}

// ParseStyle builds a Style from "#rrggbb" or "#rgb" strings.
func ParseStyle(background, foreground, accent string) (Style, error) {
	var s Style
	var err error
	if s.Background, err = ParseHexColor(background); err != nil {
		return Style{}, err
	}
	if s.Foreground, err = ParseHexColor(foreground); err != nil {
		return Style{}, err
	}
	if s.Accent, err = ParseHexColor(accent); err != nil {
		return Style{}, err
	}
	return s, nil
}

// ParseHexColor parses "#rrggbb" or "#rgb"; the leading '#' is optional.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Renderer draws cards. The parsed fonts are shared; faces are created per
// call because a face is not safe for concurrent use.
type Renderer struct {
	style   Style
	bold    *opentype.Font
	regular *opentype.Font
}

// New parses the bundled Go fonts and returns a Renderer for style.
func New(style Style) (*Renderer, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	return &Renderer{style: style, bold: bold, regular: regular}, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Draw renders card onto a new Width×Height image.
func (r *Renderer) Draw(card Card) (*image.RGBA, error) {
	titleFace, err := newFace(r.bold, titleSize)
	if err != nil {
		return nil, err
	}
	defer titleFace.Close()
	bodyFace, err := newFace(r.regular, bodySize)
	if err != nil {
		return nil, err
	}
	defer bodyFace.Close()

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.style.Background), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, Width, accentHeight), image.NewUniform(r.style.Accent), image.Point{}, draw.Src)

	maxWidth := Width - 2*padding
	y := padding + accentHeight

	titleLines := wrap(titleFace, card.Title, maxWidth, titleMaxLines)
	titleLead := lineHeight(titleFace)
	for _, line := range titleLines {
		y += titleLead
		drawText(img, titleFace, r.style.Foreground, padding, y, line)
	}

	if card.Description != "" {
		y += bodySize
		bodyLead := lineHeight(bodyFace)
		for _, line := range wrap(bodyFace, card.Description, maxWidth, bodyMaxLines) {
			y += bodyLead
			drawText(img, bodyFace, r.style.Foreground, padding, y, line)
		}
	}

	if card.Footer != "" {
		footer := truncate(bodyFace, card.Footer, maxWidth)
		drawText(img, bodyFace, r.style.Accent, padding, Height-padding, footer)
	}
	return img, nil
}

// Render draws card and encodes it as PNG to w.
func (r *Renderer) Render(w io.Writer, card Card) error {
	img, err := r.Draw(card)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WriteFile renders card into the PNG file at path.
func (r *Renderer) WriteFile(path string, card Card) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Render(f, card); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func lineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil() * 6 / 5
}

func drawText(dst draw.Image, face font.Face, c color.Color, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func fits(face font.Face, s string, maxWidth int) bool {
	return font.MeasureString(face, s).Ceil() <= maxWidth
}

// wrap breaks s into at most maxLines lines no wider than maxWidth. Text that
// does not fit ends with an ellipsis on the last line.
func wrap(face font.Face, s string, maxWidth, maxLines int) []string {
	words := strings.Fields(s)
	var lines []string
	var current string
	for i, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if fits(face, candidate, maxWidth) || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
		if len(lines) == maxLines {
			lines[maxLines-1] = truncate(face, lines[maxLines-1]+" "+strings.Join(words[i:], " "), maxWidth)
			return lines
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	for i, line := range lines {
		if !fits(face, line, maxWidth) {
			lines[i] = truncate(face, line, maxWidth)
		}
	}
	return lines
}

// truncate shortens s rune by rune until it fits, marking the cut with "…".
func truncate(face font.Face, s string, maxWidth int) string {
	if fits(face, s, maxWidth) {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + "…"
		if fits(face, candidate, maxWidth) {
			return candidate
		}
	}
	return "…"
}
