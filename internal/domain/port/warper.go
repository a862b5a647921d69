package port

import (
	"image"

	"birdseye/internal/geometry"
)

// Warper интерфейс перспективного преобразования
type Warper interface {
	// Warp строит изображение width x height: каждый выходной пиксель берётся из
	// исходного через h⁻¹, пиксели вне исходника заполняются фоном
	Warp(img image.Image, h geometry.Homography, width, height int) (image.Image, error)
}

// Fitter интерфейс вписывания изображения в заданные границы
type Fitter interface {
	// Fit уменьшает изображение с сохранением пропорций, если оно больше maxWidth x maxHeight
	Fit(img image.Image, maxWidth, maxHeight int) (image.Image, error)
}
