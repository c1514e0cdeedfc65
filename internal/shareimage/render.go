package shareimage

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
)

// Canvas geometry and the font search range. The renderer walks the size
// down from maxFontSize until the wrapped text fits the canvas.
const (
	canvasWidth  = 1200
	canvasHeight = 650
	maxFontSize  = 48
	minFontSize  = 8
	lineSpacing  = 12
	marginLeft   = 10
	fontDPI      = 72
)

// continuation lines of a wrapped paragraph are indented two spaces
const wrapIndent = "  "

// Compose builds the share text: a heading with the poi name and the
// render timestamp, then one bullet per active need line.
func Compose(poiName string, at time.Time, bullets []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s potrzebujemy:", poiName, at.Format("2006-01-02 15:04"))
	for _, bullet := range bullets {
		b.WriteString("\n- ")
		b.WriteString(bullet)
	}
	return b.String()
}

// Render draws the text onto a 1200x650 white canvas in black Go Regular.
// The font size starts at 48 and shrinks until the wrapped lines fit;
// rendering is deterministic for a given input.
func Render(text string) (image.Image, error) {
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse embedded font")
	}

	budget := int(float64(canvasWidth) * 0.95)

	var face font.Face
	var lines []string
	for size := maxFontSize; size >= minFontSize; size-- {
		candidate, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     fontDPI,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build font face")
		}

		wrapped := wrap(candidate, text, budget)
		lineHeight := candidate.Metrics().Height.Ceil() + lineSpacing
		if len(wrapped)*lineHeight <= canvasHeight || size == minFontSize {
			face = candidate
			lines = wrapped
			break
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil() + lineSpacing
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(marginLeft, metrics.Ascent.Ceil()+i*lineHeight)
		drawer.DrawString(line)
	}
	return canvas, nil
}

// wrap splits the text into lines that fit the pixel budget. Input
// newlines start fresh paragraphs; overflow lines carry the indent prefix.
func wrap(face font.Face, text string, budget int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := words[0]
		for _, word := range words[1:] {
			extended := line + " " + word
			if font.MeasureString(face, extended).Ceil() > budget {
				lines = append(lines, line)
				line = wrapIndent + word
				continue
			}
			line = extended
		}
		lines = append(lines, line)
	}
	return lines
}
