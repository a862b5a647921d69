package vision

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r2"

	"birdseye/internal/domain/entity"
	"birdseye/internal/domain/port"
	"birdseye/internal/geometry"
)

// Black — фон по умолчанию для пикселей, не попавших в исходник.
var Black = color.NRGBA{A: 255}

// PerspectiveWarper выполняет перспективный варп на чистом Go.
// Каждый выходной пиксель (x, y) отображается через h⁻¹ в исходник и
// интерполируется билинейно; центры пикселей лежат в целых координатах.
type PerspectiveWarper struct {
	Background color.NRGBA
}

// NewPerspectiveWarper создаёт варпер с чёрным фоном.
func NewPerspectiveWarper() *PerspectiveWarper {
	return &PerspectiveWarper{Background: Black}
}

// Warp строит изображение width x height по гомографии h.
func (w *PerspectiveWarper) Warp(img image.Image, h geometry.Homography, width, height int) (image.Image, error) {
	if img == nil {
		return nil, entity.NewInputError("nil image")
	}
	if width <= 0 || height <= 0 {
		return nil, entity.NewComputationError("empty output canvas %dx%d", width, height)
	}
	inv, err := h.Inverse()
	if err != nil {
		return nil, err
	}

	src := imaging.Clone(img)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for x := 0; x < width; x++ {
			c := w.Background
			sx, sy, sw := inv.Project(r2.Point{X: float64(x), Y: float64(y)})
			if sw != 0 {
				c = bilinear(src, sx/sw, sy/sw, w.Background)
			}
			row[x*4+0] = c.R
			row[x*4+1] = c.G
			row[x*4+2] = c.B
			row[x*4+3] = c.A
		}
	}
	return dst, nil
}

// bilinear интерполирует src в точке (x, y). Соседи вне изображения дают bg.
func bilinear(src *image.NRGBA, x, y float64, bg color.NRGBA) color.NRGBA {
	if math.IsNaN(x) || math.IsNaN(y) {
		return bg
	}
	b := src.Bounds()
	if x <= -1 || y <= -1 || x >= float64(b.Max.X) || y >= float64(b.Max.Y) {
		return bg
	}

	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	c00 := pixelOr(src, ix, iy, bg)
	c10 := pixelOr(src, ix+1, iy, bg)
	c01 := pixelOr(src, ix, iy+1, bg)
	c11 := pixelOr(src, ix+1, iy+1, bg)

	w00 := (1 - fx) * (1 - fy)
	w10 := fx * (1 - fy)
	w01 := (1 - fx) * fy
	w11 := fx * fy

	mix := func(a, b, c, d uint8) uint8 {
		v := float64(a)*w00 + float64(b)*w10 + float64(c)*w01 + float64(d)*w11
		return clamp8(v)
	}
	return color.NRGBA{
		R: mix(c00.R, c10.R, c01.R, c11.R),
		G: mix(c00.G, c10.G, c01.G, c11.G),
		B: mix(c00.B, c10.B, c01.B, c11.B),
		A: mix(c00.A, c10.A, c01.A, c11.A),
	}
}

func pixelOr(src *image.NRGBA, x, y int, bg color.NRGBA) color.NRGBA {
	if !(image.Point{X: x, Y: y}).In(src.Rect) {
		return bg
	}
	i := src.PixOffset(x, y)
	p := src.Pix[i : i+4 : i+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Проверка реализации интерфейса
var _ port.Warper = (*PerspectiveWarper)(nil)
