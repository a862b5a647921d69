//go:build gocv
// +build gocv

package vision

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"birdseye/internal/domain/entity"
	"birdseye/internal/domain/port"
	"birdseye/internal/geometry"
)

// GoCVEnabled сообщает, собран ли бинарник с OpenCV.
const GoCVEnabled = true

// GoCVWarper выполняет варп и вписывание средствами OpenCV.
type GoCVWarper struct {
	Background color.RGBA
}

// NewGoCVWarper создаёт варпер на OpenCV с чёрным фоном.
func NewGoCVWarper() *GoCVWarper {
	return &GoCVWarper{Background: color.RGBA{A: 255}}
}

// Warp вызывает warpPerspective с билинейной интерполяцией и постоянным фоном.
func (w *GoCVWarper) Warp(img image.Image, h geometry.Homography, width, height int) (image.Image, error) {
	if img == nil {
		return nil, entity.NewInputError("nil image")
	}
	if width <= 0 || height <= 0 {
		return nil, entity.NewComputationError("empty output canvas %dx%d", width, height)
	}
	if _, err := h.Inverse(); err != nil {
		return nil, err
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, entity.NewInputError("convert image to mat: %v", err)
	}
	defer src.Close()

	m := homographyToMat(h)
	defer m.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpPerspectiveWithParams(src, &dst, m, image.Pt(width, height),
		gocv.InterpolationLinear, gocv.BorderConstant, w.Background)

	return dst.ToImage()
}

// Fit уменьшает изображение с InterpolationArea, если оно не помещается.
func (w *GoCVWarper) Fit(img image.Image, maxWidth, maxHeight int) (image.Image, error) {
	if img == nil {
		return nil, entity.NewInputError("nil image")
	}
	b := img.Bounds()
	nw, nh, scaled, err := FitDimensions(b.Dx(), b.Dy(), maxWidth, maxHeight)
	if err != nil {
		return nil, err
	}
	if !scaled {
		return img, nil
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, entity.NewInputError("convert image to mat: %v", err)
	}
	defer src.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(src, &resized, image.Pt(nw, nh), 0, 0, gocv.InterpolationArea)

	return resized.ToImage()
}

// homographyToMat копирует матрицу в gocv.Mat типа CV64F.
func homographyToMat(h geometry.Homography) gocv.Mat {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.SetDoubleAt(r, c, h[r][c])
		}
	}
	return m
}

// Проверка реализации интерфейсов
var (
	_ port.Warper = (*GoCVWarper)(nil)
	_ port.Fitter = (*GoCVWarper)(nil)
)
