// Package geometry строит гомографию вида сверху и рассчитывает холст для варпа.
package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"birdseye/internal/domain/entity"
)

// Homography — матрица 3x3, переводящая одну проекцию плоскости в другую.
// Индексы [строка][столбец].
type Homography [3][3]float64

// Identity возвращает единичную гомографию.
func Identity() Homography {
	return Homography{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// FromDense копирует матрицу 3x3 gonum в Homography.
func FromDense(m mat.Matrix) Homography {
	var h Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h[r][c] = m.At(r, c)
		}
	}
	return h
}

// Dense возвращает копию в виде *mat.Dense.
func (h Homography) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		h[0][0], h[0][1], h[0][2],
		h[1][0], h[1][1], h[1][2],
		h[2][0], h[2][1], h[2][2],
	})
}

// At возвращает элемент матрицы.
func (h Homography) At(row, col int) float64 {
	return h[row][col]
}

// Project переводит точку в однородные координаты (x, y, w) без нормировки.
func (h Homography) Project(pt r2.Point) (x, y, w float64) {
	x = h[0][0]*pt.X + h[0][1]*pt.Y + h[0][2]
	y = h[1][0]*pt.X + h[1][1]*pt.Y + h[1][2]
	w = h[2][0]*pt.X + h[2][1]*pt.Y + h[2][2]
	return x, y, w
}

// Apply проецирует точку и делит на однородную координату.
// Нулевая однородная координата (точка уходит на бесконечность) — ошибка ErrComputation.
func (h Homography) Apply(pt r2.Point) (r2.Point, error) {
	x, y, w := h.Project(pt)
	if w == 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return r2.Point{}, entity.NewComputationError("point (%g, %g) projects to infinity (w=%g)", pt.X, pt.Y, w)
	}
	out := r2.Point{X: x / w, Y: y / w}
	if !finite(out.X) || !finite(out.Y) {
		return r2.Point{}, entity.NewComputationError("point (%g, %g) projects to non-finite (%g, %g)", pt.X, pt.Y, out.X, out.Y)
	}
	return out, nil
}

// Mul возвращает h·other.
func (h Homography) Mul(other Homography) Homography {
	var m mat.Dense
	m.Mul(h.Dense(), other.Dense())
	return FromDense(&m)
}

// Inverse возвращает обратную матрицу или ErrComputation для вырожденной.
func (h Homography) Inverse() (Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(h.Dense()); err != nil {
		return Homography{}, entity.NewComputationError("homography is not invertible: %v", err)
	}
	return FromDense(&inv), nil
}

// ApproxEqual сравнивает поэлементно с допуском tol.
func (h Homography) ApproxEqual(other Homography, tol float64) bool {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if math.Abs(h[r][c]-other[r][c]) > tol {
				return false
			}
		}
	}
	return true
}

func (h Homography) String() string {
	return fmt.Sprintf("[[%.6g %.6g %.6g] [%.6g %.6g %.6g] [%.6g %.6g %.6g]]",
		h[0][0], h[0][1], h[0][2],
		h[1][0], h[1][1], h[1][2],
		h[2][0], h[2][1], h[2][2])
}

// ComputeHomography строит H = K·R·K⁻¹ для заданных параметров камеры и оптического центра.
// Нулевое фокусное расстояние делает K сингулярной и возвращает ErrComputation.
func ComputeHomography(params entity.CameraParameters, pp entity.PrincipalPoint) (Homography, error) {
	k, err := IntrinsicMatrix(params.FocalLength, pp)
	if err != nil {
		return Homography{}, err
	}

	var kInv mat.Dense
	if err := kInv.Inverse(k); err != nil {
		return Homography{}, entity.NewComputationError("intrinsic matrix is singular: %v", err)
	}

	r, err := Rotation(params)
	if err != nil {
		return Homography{}, err
	}

	var kr, h mat.Dense
	kr.Mul(k, r)
	h.Mul(&kr, &kInv)
	return FromDense(&h), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
