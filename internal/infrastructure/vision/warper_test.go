package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"birdseye/internal/domain/entity"
	"birdseye/internal/geometry"
)

var red = color.NRGBA{R: 255, A: 255}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 60), B: 7, A: 255})
		}
	}
	return img
}

func TestPerspectiveWarper_Identity(t *testing.T) {
	src := gradient(4, 3)
	out, err := NewPerspectiveWarper().Warp(src, geometry.Identity(), 4, 3)
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), out.Bounds())
	require.Equal(t, src.Pix, out.(*image.NRGBA).Pix)
}

func TestPerspectiveWarper_TranslationFillsBackground(t *testing.T) {
	out, err := NewPerspectiveWarper().Warp(solid(3, 3, red), geometry.Translation(2, 1), 5, 4)
	require.NoError(t, err)
	dst := out.(*image.NRGBA)

	require.Equal(t, Black, dst.NRGBAAt(0, 0))
	require.Equal(t, Black, dst.NRGBAAt(1, 1))
	require.Equal(t, red, dst.NRGBAAt(2, 1))
	require.Equal(t, red, dst.NRGBAAt(4, 3))
	require.Equal(t, Black, dst.NRGBAAt(4, 0))
}

func TestPerspectiveWarper_HalfPixelBlendsWithBackground(t *testing.T) {
	out, err := NewPerspectiveWarper().Warp(solid(2, 1, red), geometry.Translation(0.5, 0), 3, 1)
	require.NoError(t, err)
	dst := out.(*image.NRGBA)

	// x=0 -> -0.5: половина фона, половина красного.
	require.Equal(t, color.NRGBA{R: 128, A: 255}, dst.NRGBAAt(0, 0))
	require.Equal(t, red, dst.NRGBAAt(1, 0))
}

func TestPerspectiveWarper_CustomBackground(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	w := &PerspectiveWarper{Background: white}
	out, err := w.Warp(solid(2, 2, red), geometry.Translation(10, 10), 2, 2)
	require.NoError(t, err)
	require.Equal(t, white, out.(*image.NRGBA).NRGBAAt(1, 1))
}

func TestPerspectiveWarper_Deterministic(t *testing.T) {
	params := entity.NewEulerParameters(0, 30, 10, 10, 400)
	src := gradient(6, 5)
	h, err := geometry.ComputeHomography(params, params.Principal(6, 5))
	require.NoError(t, err)
	b, err := geometry.ComputeBounds(6, 5, h)
	require.NoError(t, err)

	w := NewPerspectiveWarper()
	a, err := w.Warp(src, b.Adjusted, b.Width, b.Height)
	require.NoError(t, err)
	c, err := w.Warp(src, b.Adjusted, b.Width, b.Height)
	require.NoError(t, err)
	require.Equal(t, a, c)
}

func TestPerspectiveWarper_Errors(t *testing.T) {
	w := NewPerspectiveWarper()

	_, err := w.Warp(nil, geometry.Identity(), 1, 1)
	require.ErrorIs(t, err, entity.ErrInput)

	_, err = w.Warp(solid(1, 1, red), geometry.Identity(), 0, 1)
	require.ErrorIs(t, err, entity.ErrComputation)

	_, err = w.Warp(solid(1, 1, red), geometry.Homography{}, 1, 1)
	require.ErrorIs(t, err, entity.ErrComputation)
}

func TestPerspectiveWarper_NonZeroOriginSource(t *testing.T) {
	src := solid(6, 6, red).SubImage(image.Rect(2, 2, 6, 6))
	out, err := NewPerspectiveWarper().Warp(src, geometry.Identity(), 4, 4)
	require.NoError(t, err)
	require.Equal(t, red, out.(*image.NRGBA).NRGBAAt(0, 0))
	require.Equal(t, red, out.(*image.NRGBA).NRGBAAt(3, 3))
}
