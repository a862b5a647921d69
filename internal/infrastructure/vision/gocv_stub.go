//go:build !gocv
// +build !gocv

package vision

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"birdseye/internal/geometry"
)

// GoCVEnabled сообщает, собран ли бинарник с OpenCV.
const GoCVEnabled = false

var errGoCVDisabled = errors.New("gocv build tag is not enabled")

// GoCVWarper — заглушка без OpenCV.
type GoCVWarper struct {
	Background color.RGBA
}

// NewGoCVWarper создаёт варпер-заглушку (без OpenCV).
func NewGoCVWarper() *GoCVWarper {
	return &GoCVWarper{Background: color.RGBA{A: 255}}
}

// Warp возвращает ошибку, если сборка без тега gocv.
func (w *GoCVWarper) Warp(img image.Image, h geometry.Homography, width, height int) (image.Image, error) {
	_ = img
	_ = h
	return nil, errGoCVDisabled
}

// Fit возвращает ошибку, если сборка без тега gocv.
func (w *GoCVWarper) Fit(img image.Image, maxWidth, maxHeight int) (image.Image, error) {
	_ = img
	return nil, errGoCVDisabled
}
