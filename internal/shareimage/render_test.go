package shareimage

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"
)

func TestComposeFormatsHeadingAndBullets(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	text := Compose("Schronisko Azyl", at, []string{"Koce: 10 pcs", "Woda: 50 l"})

	want := "Schronisko Azyl 2026-03-14 09:30 potrzebujemy:\n- Koce: 10 pcs\n- Woda: 50 l"
	if text != want {
		t.Fatalf("unexpected compose output:\n got %q\nwant %q", text, want)
	}
}

func TestComposeWithoutBullets(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	text := Compose("Schronisko", at, nil)
	if strings.Contains(text, "\n") {
		t.Fatalf("expected single heading line, got %q", text)
	}
}

func TestRenderCanvasGeometry(t *testing.T) {
	img, err := Render("Schronisko 2026-03-14 09:30 potrzebujemy:\n- Koce: 10 pcs")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 1200 || bounds.Dy() != 650 {
		t.Fatalf("expected 1200x650 canvas, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	// Background stays white; the glyphs leave non-white pixels.
	if got := img.At(bounds.Max.X-1, bounds.Max.Y-1); !isWhite(got) {
		t.Fatalf("expected white background corner, got %v", got)
	}
	if !hasInk(img) {
		t.Fatal("expected rendered text pixels")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	const text = "Schronisko potrzebujemy:\n- Koce: 10 pcs"
	first, err := Render(text)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := Render(text)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	bounds := first.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if first.At(x, y) != second.At(x, y) {
				t.Fatalf("pixel (%d,%d) differs between renders", x, y)
			}
		}
	}
}

func TestRenderShrinksFontForLongText(t *testing.T) {
	long := strings.Repeat("bardzo dluga linia potrzeb ", 200)
	img, err := Render(long)
	if err != nil {
		t.Fatalf("render long text: %v", err)
	}
	if img.Bounds().Dx() != 1200 || img.Bounds().Dy() != 650 {
		t.Fatalf("canvas size must not change for long text")
	}
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func hasInk(img image.Image) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !isWhite(img.At(x, y)) {
				return true
			}
		}
	}
	return false
}
