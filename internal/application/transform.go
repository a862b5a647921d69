package app

import (
	"bytes"
	"context"
	"image"
	"io"
	"time"

	"go.uber.org/zap"

	"birdseye/internal/domain/entity"
	"birdseye/internal/domain/port"
	"birdseye/internal/geometry"
)

// Границы вписывания по умолчанию.
const (
	DefaultMaxWidth      = 1080
	DefaultMaxHeight     = 720
	DefaultMaxCanvasSide = 16384
)

// TransformService — единый конвейер: параметры → H → холст → варп → вписывание.
// Состояния между вызовами нет.
type TransformService struct {
	warper        port.Warper
	fitter        port.Fitter
	codec         port.ImageCodec
	logger        *zap.Logger
	maxCanvasSide int
}

// NewTransformService создаёт конвейер. codec нужен только для TransformEncoded.
func NewTransformService(warper port.Warper, fitter port.Fitter, codec port.ImageCodec, logger *zap.Logger, maxCanvasSide int) *TransformService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxCanvasSide <= 0 {
		maxCanvasSide = DefaultMaxCanvasSide
	}
	return &TransformService{
		warper:        warper,
		fitter:        fitter,
		codec:         codec,
		logger:        logger,
		maxCanvasSide: maxCanvasSide,
	}
}

// Transform переводит img в вид сверху и вписывает в maxWidth x maxHeight.
func (s *TransformService) Transform(ctx context.Context, img image.Image, params entity.CameraParameters, maxWidth, maxHeight int) (*entity.TransformResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, entity.NewInputError("nil image")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, entity.NewParameterError("fit bounds must be positive, got %dx%d", maxWidth, maxHeight)
	}

	start := time.Now()
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	h, err := geometry.ComputeHomography(params, params.Principal(width, height))
	if err != nil {
		return nil, err
	}

	bounds, err := geometry.ComputeBounds(width, height, h)
	if err != nil {
		return nil, err
	}
	if bounds.Width < 1 || bounds.Height < 1 || bounds.Width > s.maxCanvasSide || bounds.Height > s.maxCanvasSide {
		return nil, entity.NewComputationError("warped canvas %dx%d is outside [1, %d]", bounds.Width, bounds.Height, s.maxCanvasSide)
	}

	warped, err := s.warper.Warp(img, bounds.Adjusted, bounds.Width, bounds.Height)
	if err != nil {
		return nil, err
	}

	fitted, err := s.fitter.Fit(warped, maxWidth, maxHeight)
	if err != nil {
		return nil, err
	}

	fb := fitted.Bounds()
	result := &entity.TransformResult{
		Image:        fitted,
		WarpedWidth:  bounds.Width,
		WarpedHeight: bounds.Height,
		Width:        fb.Dx(),
		Height:       fb.Dy(),
		Scaled:       fb.Dx() != bounds.Width || fb.Dy() != bounds.Height,
	}

	s.logger.Debug("image transformed",
		zap.Stringer("params", params),
		zap.Int("src_width", width),
		zap.Int("src_height", height),
		zap.Stringer("homography", bounds.Adjusted),
		zap.Int("warped_width", result.WarpedWidth),
		zap.Int("warped_height", result.WarpedHeight),
		zap.Int("width", result.Width),
		zap.Int("height", result.Height),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

// TransformEncoded декодирует r, преобразует и возвращает PNG.
func (s *TransformService) TransformEncoded(ctx context.Context, r io.Reader, params entity.CameraParameters, maxWidth, maxHeight int) ([]byte, *entity.TransformResult, error) {
	if s.codec == nil {
		return nil, nil, entity.NewInputError("image codec is not configured")
	}
	img, err := s.codec.Decode(r)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.Transform(ctx, img, params, maxWidth, maxHeight)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, result.Image); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), result, nil
}
