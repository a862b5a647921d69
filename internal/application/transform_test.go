package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"birdseye/internal/domain/entity"
	"birdseye/internal/geometry"
	"birdseye/internal/infrastructure/imageio"
	"birdseye/internal/infrastructure/vision"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func newTransformService(maxCanvasSide int) *TransformService {
	return NewTransformService(vision.NewPerspectiveWarper(), vision.NewAreaFitter(), imageio.NewCodec(0), nil, maxCanvasSide)
}

func TestTransformService_TiltScenario(t *testing.T) {
	svc := newTransformService(0)
	params := entity.NewTiltParameters(0, 30, 400, &entity.PrincipalPoint{X: 50, Y: 50})

	res, err := svc.Transform(context.Background(), solid(100, 100, color.NRGBA{R: 200, G: 100, B: 50, A: 255}), params, DefaultMaxWidth, DefaultMaxHeight)
	require.NoError(t, err)
	require.Equal(t, 125, res.WarpedWidth)
	require.Equal(t, 135, res.WarpedHeight)
	require.Equal(t, 125, res.Width)
	require.Equal(t, 135, res.Height)
	require.False(t, res.Scaled)
	require.Equal(t, image.Rect(0, 0, 125, 135), res.Image.Bounds())
}

func TestTransformService_IdentityKeepsSize(t *testing.T) {
	svc := newTransformService(0)
	src := solid(64, 48, color.NRGBA{G: 255, A: 255})

	res, err := svc.Transform(context.Background(), src, entity.NewEulerParameters(15.5, 0, 0, 0, 400), DefaultMaxWidth, DefaultMaxHeight)
	require.NoError(t, err)
	require.Equal(t, 64, res.Width)
	require.Equal(t, 48, res.Height)
	require.Equal(t, color.NRGBAModel.Convert(src.At(10, 10)), color.NRGBAModel.Convert(res.Image.At(10, 10)))
}

func TestTransformService_FitsIntoBounds(t *testing.T) {
	svc := newTransformService(0)

	res, err := svc.Transform(context.Background(), solid(400, 300, color.NRGBA{B: 255, A: 255}), entity.NewEulerParameters(15.5, 30, 10, 10, 400), 100, 100)
	require.NoError(t, err)
	require.True(t, res.Scaled)
	require.LessOrEqual(t, res.Width, 100)
	require.LessOrEqual(t, res.Height, 100)
	require.Greater(t, res.WarpedWidth, res.Width)
}

func TestTransformService_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTransformService(0)
	img := solid(10, 10, color.NRGBA{A: 255})

	_, err := svc.Transform(ctx, img, entity.NewEulerParameters(15.5, 30, 10, 10, 0), DefaultMaxWidth, DefaultMaxHeight)
	require.ErrorIs(t, err, entity.ErrComputation)

	_, err = svc.Transform(ctx, img, entity.NewTiltParameters(0, 30, -5, nil), DefaultMaxWidth, DefaultMaxHeight)
	require.ErrorIs(t, err, entity.ErrParameter)

	_, err = svc.Transform(ctx, nil, defaults, DefaultMaxWidth, DefaultMaxHeight)
	require.ErrorIs(t, err, entity.ErrInput)

	_, err = svc.Transform(ctx, img, defaults, 0, DefaultMaxHeight)
	require.ErrorIs(t, err, entity.ErrParameter)

	_, err = svc.Transform(ctx, image.NewNRGBA(image.Rect(0, 0, 0, 0)), defaults, DefaultMaxWidth, DefaultMaxHeight)
	require.ErrorIs(t, err, entity.ErrInput)
}

func TestTransformService_CanvasLimit(t *testing.T) {
	svc := newTransformService(50)

	_, err := svc.Transform(context.Background(), solid(100, 100, color.NRGBA{A: 255}), entity.NewEulerParameters(0, 0, 0, 0, 400), DefaultMaxWidth, DefaultMaxHeight)
	require.ErrorIs(t, err, entity.ErrComputation)
}

func TestTransformService_CancelledContext(t *testing.T) {
	svc := newTransformService(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Transform(ctx, solid(10, 10, color.NRGBA{A: 255}), defaults, DefaultMaxWidth, DefaultMaxHeight)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTransformService_Deterministic(t *testing.T) {
	svc := newTransformService(0)
	src := solid(80, 60, color.NRGBA{R: 10, G: 220, B: 90, A: 255})

	a, err := svc.Transform(context.Background(), src, defaults, 200, 200)
	require.NoError(t, err)
	b, err := svc.Transform(context.Background(), src, defaults, 200, 200)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestTransformService_TransformEncoded(t *testing.T) {
	svc := newTransformService(0)

	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, solid(100, 100, color.NRGBA{R: 255, A: 255})))

	data, res, err := svc.TransformEncoded(context.Background(), &in, entity.NewTiltParameters(0, 30, 400, nil), DefaultMaxWidth, DefaultMaxHeight)
	require.NoError(t, err)

	out, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, res.Width, out.Bounds().Dx())
	require.Equal(t, res.Height, out.Bounds().Dy())

	_, _, err = svc.TransformEncoded(context.Background(), bytes.NewReader([]byte("not an image")), defaults, DefaultMaxWidth, DefaultMaxHeight)
	require.ErrorIs(t, err, entity.ErrInput)

	noCodec := NewTransformService(vision.NewPerspectiveWarper(), vision.NewAreaFitter(), nil, nil, 0)
	_, _, err = noCodec.TransformEncoded(context.Background(), &in, defaults, DefaultMaxWidth, DefaultMaxHeight)
	require.ErrorIs(t, err, entity.ErrInput)
}

// Варпер, который проверяет, что холст совпадает с границами из geometry.
type recordingWarper struct {
	width, height int
	h             geometry.Homography
}

func (w *recordingWarper) Warp(img image.Image, h geometry.Homography, width, height int) (image.Image, error) {
	w.width, w.height, w.h = width, height, h
	return image.NewNRGBA(image.Rect(0, 0, width, height)), nil
}

func TestTransformService_PassesAdjustedHomography(t *testing.T) {
	warper := &recordingWarper{}
	svc := NewTransformService(warper, vision.NewAreaFitter(), nil, nil, 0)
	params := entity.NewTiltParameters(0, 30, 400, nil)

	_, err := svc.Transform(context.Background(), solid(100, 100, color.NRGBA{A: 255}), params, DefaultMaxWidth, DefaultMaxHeight)
	require.NoError(t, err)

	h, err := geometry.ComputeHomography(params, params.Principal(100, 100))
	require.NoError(t, err)
	b, err := geometry.ComputeBounds(100, 100, h)
	require.NoError(t, err)
	require.Equal(t, b.Width, warper.width)
	require.Equal(t, b.Height, warper.height)
	require.Equal(t, b.Adjusted, warper.h)
}
