package imageio

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"birdseye/internal/domain/entity"
)

func sample() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 40), B: 90, A: 255})
		}
	}
	return img
}

func TestCodec_RoundTrip(t *testing.T) {
	c := NewCodec(0)
	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf, sample()))

	img, err := c.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
	r, g, b, _ := img.At(3, 2).RGBA()
	require.Equal(t, uint32(90), r>>8)
	require.Equal(t, uint32(80), g>>8)
	require.Equal(t, uint32(90), b>>8)
}

func TestCodec_DecodeErrors(t *testing.T) {
	_, err := NewCodec(0).Decode(strings.NewReader("definitely not an image"))
	require.ErrorIs(t, err, entity.ErrInput)

	var buf bytes.Buffer
	require.NoError(t, NewCodec(0).Encode(&buf, sample()))
	_, err = NewCodec(10).Decode(&buf)
	require.ErrorIs(t, err, entity.ErrInput)

	require.ErrorIs(t, NewCodec(0).Encode(&buf, nil), entity.ErrInput)
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.png")
	require.NoError(t, Save(path, sample()))

	img, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8, img.Bounds().Dx())
	require.Equal(t, 6, img.Bounds().Dy())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	require.ErrorIs(t, err, entity.ErrInput)

	_, err = Load("")
	require.ErrorIs(t, err, entity.ErrInput)
}
