// Package qr renders the scannable student token: the identifier encoded at
// the highest error-correction level, decorated with the institutional
// watermark, logo badge and micro-text border.
package qr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"

	"gocampus/internal/blob"
)

// Options controls the rendered artifact.
type Options struct {
	// Size is the square raster size in pixels; sized for print quality.
	Size int
	// WatermarkText is tiled diagonally at low opacity behind nothing and
	// over everything, faint enough to stay inside the EC budget.
	WatermarkText string
	// MicroText is repeated along the top and bottom edges, outside the
	// code's quiet zone.
	MicroText string
	// LogoPath points at the institutional logo; missing or unreadable logos
	// are skipped, never fatal.
	LogoPath string
}

// Encoder renders and persists QR artifacts.
type Encoder struct {
	store blob.Store
	opts  Options
}

// NewEncoder creates an encoder writing through the given blob store.
func NewEncoder(store blob.Store, opts Options) *Encoder {
	if opts.Size <= 0 {
		opts.Size = 1500
	}
	return &Encoder{store: store, opts: opts}
}

// ArtifactKey is the blob key for a student's QR image. QR artifacts live
// under their own prefix so photo uploads keyed by the same student can never
// clobber the scannable token.
func ArtifactKey(studentID string) string {
	return "qr/" + studentID + ".png"
}

// Render produces the decorated PNG for a student identifier. The identifier
// is the entire payload; level H redundancy keeps the code decodable under
// the logo badge and watermark. Cosmetic failures degrade to the plain
// matrix; only matrix generation itself is fatal.
func (e *Encoder) Render(studentID string) ([]byte, error) {
	if studentID == "" {
		return nil, fmt.Errorf("student id required")
	}
	code, err := qrcode.New(studentID, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("qr matrix: %w", err)
	}

	size := e.opts.Size
	// The matrix (with its own quiet zone) sits inside an edge band reserved
	// for the micro-text strips.
	edge := size / 36
	inner := size - 2*edge

	canvas := imaging.New(size, size, color.NRGBA{255, 255, 255, 255})
	qrImg := code.Image(inner)
	draw.Draw(canvas, image.Rect(edge, edge, edge+inner, edge+inner), qrImg, qrImg.Bounds().Min, draw.Src)

	if err := e.decorate(canvas, edge); err != nil {
		log.Printf("qr: cosmetic layer failed for %s, keeping plain matrix: %v", studentID, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode renders the artifact and persists it under the student's key,
// replacing any prior artifact. Returns the reference the caller stores on
// the student record; on error the caller must leave the old reference alone.
func (e *Encoder) Encode(ctx context.Context, studentID string) (string, error) {
	data, err := e.Render(studentID)
	if err != nil {
		return "", err
	}
	ref, err := e.store.Put(ctx, ArtifactKey(studentID), data)
	if err != nil {
		return "", fmt.Errorf("store artifact: %w", err)
	}
	return ref, nil
}
