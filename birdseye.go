// Package birdseye переводит снимок фронтальной камеры в вид сверху.
//
//	t, err := birdseye.New(birdseye.Options{Pitch: 30, Yaw: 10, Roll: 10, FocalLength: 400})
//	out, err := t.TransformImageDefault(img)
//
// Главная точка берётся в центре изображения. Ошибки сравниваются через
// errors.Is с ErrInput, ErrComputation и ErrParameter.
package birdseye

import (
	"context"
	"image"

	"go.uber.org/zap"

	app "birdseye/internal/application"
	"birdseye/internal/domain/entity"
	"birdseye/internal/infrastructure/vision"
)

// Виды ошибок конвейера.
var (
	ErrInput       = entity.ErrInput
	ErrComputation = entity.ErrComputation
	ErrParameter   = entity.ErrParameter
)

// Границы вписывания по умолчанию.
const (
	DefaultMaxWidth  = app.DefaultMaxWidth
	DefaultMaxHeight = app.DefaultMaxHeight
)

// Options — ориентация и внутренние параметры камеры. Углы в градусах.
type Options struct {
	CameraHeight float64 // не влияет на преобразование
	Pitch        float64
	Yaw          float64
	Roll         float64
	FocalLength  float64

	// Backend — "native" (по умолчанию) или "gocv".
	Backend string
	Logger  *zap.Logger
}

// Transformer хранит параметры камеры и применяет их к изображениям.
// Безопасен для конкурентного использования.
type Transformer struct {
	params  entity.CameraParameters
	service *app.TransformService
}

// New проверяет параметры и выбирает бэкенд варпа.
func New(opts Options) (*Transformer, error) {
	params := entity.NewEulerParameters(opts.CameraHeight, opts.Pitch, opts.Yaw, opts.Roll, opts.FocalLength)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	warper, fitter, err := vision.NewBackend(opts.Backend)
	if err != nil {
		return nil, err
	}

	return &Transformer{
		params:  params,
		service: app.NewTransformService(warper, fitter, nil, opts.Logger, app.DefaultMaxCanvasSide),
	}, nil
}

// TransformImage возвращает вид сверху, вписанный в maxWidth x maxHeight без увеличения.
func (t *Transformer) TransformImage(img image.Image, maxWidth, maxHeight int) (image.Image, error) {
	res, err := t.service.Transform(context.Background(), img, t.params, maxWidth, maxHeight)
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

// TransformImageDefault вписывает результат в 1080x720.
func (t *Transformer) TransformImageDefault(img image.Image) (image.Image, error) {
	return t.TransformImage(img, DefaultMaxWidth, DefaultMaxHeight)
}
