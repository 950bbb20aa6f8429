package qr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBlobStore captures artifacts in memory.
type memBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	fail  bool
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string][]byte)}
}

func (s *memBlobStore) Put(_ context.Context, key string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return "", errors.New("store unavailable")
	}
	s.blobs[key] = data
	return "mem://" + key, nil
}

func (s *memBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func testOptions() Options {
	return Options{
		Size:          600,
		WatermarkText: "Ballari Institute of Technology and Management",
		MicroText:     "BITM",
		LogoPath:      "testdata/missing_logo.png",
	}
}

func TestRenderProducesPNGAtSize(t *testing.T) {
	e := NewEncoder(newMemBlobStore(), testOptions())

	data, err := e.Render("S01")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestRenderMissingLogoIsNotFatal(t *testing.T) {
	// The logo file does not exist; the matrix must still come out.
	e := NewEncoder(newMemBlobStore(), testOptions())
	data, err := e.Render("S02")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderEmptyIdentifier(t *testing.T) {
	e := NewEncoder(newMemBlobStore(), testOptions())
	_, err := e.Render("")
	assert.Error(t, err)
}

func TestEncodeStoresUnderStableKey(t *testing.T) {
	store := newMemBlobStore()
	e := NewEncoder(store, testOptions())

	ref, err := e.Encode(context.Background(), "S01")
	require.NoError(t, err)
	assert.Equal(t, "mem://qr/S01.png", ref)
	assert.Contains(t, store.blobs, "qr/S01.png")
}

func TestEncodeIsIdempotentPerIdentifier(t *testing.T) {
	store := newMemBlobStore()
	e := NewEncoder(store, testOptions())

	first, err := e.Encode(context.Background(), "S01")
	require.NoError(t, err)
	second, err := e.Encode(context.Background(), "S01")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, store.blobs, 1)
}

func TestEncodeStoreFailureIsFatal(t *testing.T) {
	store := newMemBlobStore()
	store.fail = true
	e := NewEncoder(store, testOptions())

	_, err := e.Encode(context.Background(), "S01")
	assert.Error(t, err)
	assert.Empty(t, store.blobs)
}

func TestDefaultSize(t *testing.T) {
	e := NewEncoder(newMemBlobStore(), Options{})
	assert.Equal(t, 1500, e.opts.Size)
}

// decodePayload reads the QR matrix back out of a rendered PNG.
func decodePayload(t *testing.T, data []byte) string {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bmp, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(gozxing.NewLuminanceSourceFromImage(img)))
	require.NoError(t, err)

	res, err := zxqrcode.NewQRCodeReader().Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	require.NoError(t, err)
	return res.GetText()
}

func TestRenderRoundTripsIdentifier(t *testing.T) {
	// The watermark and micro-text must leave the matrix decodable.
	e := NewEncoder(newMemBlobStore(), testOptions())
	data, err := e.Render("S42")
	require.NoError(t, err)
	assert.Equal(t, "S42", decodePayload(t, data))
}

func TestRenderWithLogoStillDecodes(t *testing.T) {
	logoPath := filepath.Join(t.TempDir(), "logo.png")
	logo := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			logo.SetNRGBA(x, y, color.NRGBA{200, 30, 30, 255})
		}
	}
	f, err := os.Create(logoPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, logo))
	require.NoError(t, f.Close())

	opts := testOptions()
	opts.LogoPath = logoPath
	e := NewEncoder(newMemBlobStore(), opts)

	// Level H absorbs the centered badge; the payload must survive it.
	data, err := e.Render("S42")
	require.NoError(t, err)
	assert.Equal(t, "S42", decodePayload(t, data))
}
