package qr

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// decorate applies the cosmetic layer in place: tiled diagonal watermark,
// centered logo badge, micro-text strips in the edge band.
func (e *Encoder) decorate(canvas *image.NRGBA, edge int) error {
	size := canvas.Bounds().Dx()

	if e.opts.WatermarkText != "" {
		if err := e.watermark(canvas); err != nil {
			return fmt.Errorf("watermark: %w", err)
		}
	}
	e.logoBadge(canvas, size)
	if e.opts.MicroText != "" {
		e.microText(canvas, size, edge)
	}
	return nil
}

// watermark tiles the institution name diagonally at ~8% opacity across the
// whole image, including the matrix. Level H keeps the code decodable.
func (e *Encoder) watermark(canvas *image.NRGBA) error {
	tile := renderText(e.opts.WatermarkText, color.NRGBA{A: 20})
	// The bitmap face is small; scale up to print proportions before rotating.
	tile = imaging.Resize(tile, tile.Bounds().Dx()*4, 0, imaging.Lanczos)
	rotated := imaging.Rotate(tile, 30, color.NRGBA{})

	size := canvas.Bounds().Dx()
	stepX := rotated.Bounds().Dx() + 120
	stepY := rotated.Bounds().Dy() + 120
	for y := -stepY; y < size+stepY; y += stepY {
		for x := -stepX; x < size+stepX; x += stepX {
			r := rotated.Bounds().Add(image.Pt(x, y))
			draw.Draw(canvas, r, rotated, rotated.Bounds().Min, draw.Over)
		}
	}
	return nil
}

// logoBadge pastes the logo on a rounded white badge at the center. Badge
// width is ~17% of the image, inside the ~30% EC budget together with the
// watermark. A missing or unreadable logo skips the badge entirely.
func (e *Encoder) logoBadge(canvas *image.NRGBA, size int) {
	if e.opts.LogoPath == "" {
		return
	}
	if _, err := os.Stat(e.opts.LogoPath); err != nil {
		return
	}
	logo, err := imaging.Open(e.opts.LogoPath)
	if err != nil {
		return
	}

	logoSize := size * 17 / 100
	fitted := imaging.Fit(logo, logoSize, logoSize, imaging.Lanczos)

	pad := logoSize * 12 / 100
	badge := logoSize + 2*pad
	badgeMin := image.Pt((size-badge)/2, (size-badge)/2)
	fillRounded(canvas, image.Rectangle{Min: badgeMin, Max: badgeMin.Add(image.Pt(badge, badge))},
		badge/5, color.NRGBA{255, 255, 255, 255})

	off := image.Pt(
		badgeMin.X+(badge-fitted.Bounds().Dx())/2,
		badgeMin.Y+(badge-fitted.Bounds().Dy())/2,
	)
	draw.Draw(canvas, fitted.Bounds().Add(off), fitted, fitted.Bounds().Min, draw.Over)
}

// microText draws the repeated anti-forgery strip along the top and bottom
// edges, in the band outside the matrix and its quiet zone.
func (e *Encoder) microText(canvas *image.NRGBA, size, edge int) {
	strip := strings.Repeat(e.opts.MicroText+" • ", 60)
	img := renderText(strip, color.NRGBA{A: 255})
	h := img.Bounds().Dy()

	top := image.Pt(edge, (edge-h)/2)
	draw.Draw(canvas, img.Bounds().Add(top), img, img.Bounds().Min, draw.Over)

	bottom := image.Pt(edge, size-edge+(edge-h)/2)
	draw.Draw(canvas, img.Bounds().Add(bottom), img, img.Bounds().Min, draw.Over)
}

// renderText rasterizes a single line with the fixed 7x13 face.
func renderText(text string, col color.NRGBA) *image.NRGBA {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	height := metrics.Height.Ceil() + 2

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
	return img
}

// fillRounded fills a rounded rectangle.
func fillRounded(dst *image.NRGBA, r image.Rectangle, radius int, col color.NRGBA) {
	if radius <= 0 {
		draw.Draw(dst, r, image.NewUniform(col), image.Point{}, draw.Src)
		return
	}
	rr := radius * radius
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cx, cy := 0, 0
			switch {
			case x < r.Min.X+radius && y < r.Min.Y+radius:
				cx, cy = r.Min.X+radius, r.Min.Y+radius
			case x >= r.Max.X-radius && y < r.Min.Y+radius:
				cx, cy = r.Max.X-radius-1, r.Min.Y+radius
			case x < r.Min.X+radius && y >= r.Max.Y-radius:
				cx, cy = r.Min.X+radius, r.Max.Y-radius-1
			case x >= r.Max.X-radius && y >= r.Max.Y-radius:
				cx, cy = r.Max.X-radius-1, r.Max.Y-radius-1
			default:
				dst.SetNRGBA(x, y, col)
				continue
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= rr {
				dst.SetNRGBA(x, y, col)
			}
		}
	}
}
