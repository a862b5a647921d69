package geometry

import (
	"math"

	"github.com/golang/geo/r2"

	"birdseye/internal/domain/entity"
)

// ceilSlack гасит погрешность K·K⁻¹: 100.00000000000001 не должно становиться 101.
const ceilSlack = 1e-9

// Bounds — холст, на который без обрезки ложится всё варпнутое изображение.
type Bounds struct {
	Width    int
	Height   int
	Adjusted Homography // T·H, все углы попадают в неотрицательные координаты
	Origin   r2.Point   // (x_min, y_min) до сдвига
	Corners  [4]r2.Point
}

// ImageCorners возвращает углы (0,0), (w,0), (0,h), (w,h).
func ImageCorners(width, height int) [4]r2.Point {
	w, h := float64(width), float64(height)
	return [4]r2.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: 0, Y: h}, {X: w, Y: h}}
}

// Translation возвращает матрицу сдвига на (dx, dy).
func Translation(dx, dy float64) Homography {
	return Homography{{1, 0, dx}, {0, 1, dy}, {0, 0, 1}}
}

// ComputeBounds проецирует углы изображения через h, берёт их ограничивающий
// прямоугольник и сдвигает гомографию так, чтобы он начинался в (0, 0).
// Размеры округляются вверх.
//
// Если хотя бы один угол уходит на бесконечность (однородная координата равна
// нулю, поворот около 90°), возвращается ErrComputation.
func ComputeBounds(width, height int, h Homography) (Bounds, error) {
	if width <= 0 || height <= 0 {
		return Bounds{}, entity.NewInputError("image has no pixels (%dx%d)", width, height)
	}

	corners := ImageCorners(width, height)
	var projected [4]r2.Point
	for i, c := range corners {
		p, err := h.Apply(c)
		if err != nil {
			return Bounds{}, err
		}
		projected[i] = p
	}

	rect := r2.RectFromPoints(projected[:]...)
	lo := rect.Lo()
	size := rect.Size()
	if size.X > math.MaxInt32 || size.Y > math.MaxInt32 {
		return Bounds{}, entity.NewComputationError("warped canvas is unbounded (%gx%g)", size.X, size.Y)
	}

	return Bounds{
		Width:    ceilDim(size.X),
		Height:   ceilDim(size.Y),
		Adjusted: Translation(-lo.X, -lo.Y).Mul(h),
		Origin:   lo,
		Corners:  projected,
	}, nil
}

func ceilDim(v float64) int {
	return int(math.Ceil(v - ceilSlack))
}
