package vision

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"birdseye/internal/domain/entity"
	"birdseye/internal/domain/port"
)

// AreaFitter уменьшает изображение усреднением по площади (box-фильтр).
// Никогда не увеличивает.
type AreaFitter struct{}

// NewAreaFitter создаёт фиттер.
func NewAreaFitter() *AreaFitter {
	return &AreaFitter{}
}

// Fit вписывает img в maxWidth x maxHeight с сохранением пропорций.
func (f *AreaFitter) Fit(img image.Image, maxWidth, maxHeight int) (image.Image, error) {
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
	return imaging.Resize(img, nw, nh, imaging.Box), nil
}

// FitDimensions считает размер после вписывания: scale = min(maxW/w, maxH/h).
// При scale < 1 обе стороны умножаются на scale и округляются до ближайшего целого
// (не меньше 1); при scale >= 1 размер не меняется и scaled = false.
func FitDimensions(width, height, maxWidth, maxHeight int) (nw, nh int, scaled bool, err error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return 0, 0, false, entity.NewParameterError("fit bounds must be positive, got %dx%d", maxWidth, maxHeight)
	}
	if width <= 0 || height <= 0 {
		return width, height, false, nil
	}

	scale := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	if scale >= 1 {
		return width, height, false, nil
	}

	nw = maxInt(1, int(math.Round(float64(width)*scale)))
	nh = maxInt(1, int(math.Round(float64(height)*scale)))
	return nw, nh, true, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Проверка реализации интерфейса
var _ port.Fitter = (*AreaFitter)(nil)
