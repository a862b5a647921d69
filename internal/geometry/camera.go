package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"birdseye/internal/domain/entity"
)

// IntrinsicMatrix создаёт матрицу камеры с квадратным пикселем и без перекоса:
//
//	[[f 0 cx],
//	 [0 f cy],
//	 [0 0  1]]
func IntrinsicMatrix(focalLength float64, pp entity.PrincipalPoint) (*mat.Dense, error) {
	if focalLength == 0 || !finite(focalLength) {
		return nil, entity.NewComputationError("singular intrinsic matrix: focal_length=%v", focalLength)
	}
	k := mat.NewDense(3, 3, nil)
	k.Set(0, 0, focalLength)
	k.Set(1, 1, focalLength)
	k.Set(0, 2, pp.X)
	k.Set(1, 2, pp.Y)
	k.Set(2, 2, 1)
	return k, nil
}

// RotationX — поворот вокруг оси X (pitch / tilt), угол в градусах.
func RotationX(deg float64) *mat.Dense {
	s, c := math.Sincos(radians(deg))
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

// RotationY — поворот вокруг оси Y (yaw), угол в градусах.
func RotationY(deg float64) *mat.Dense {
	s, c := math.Sincos(radians(deg))
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

// RotationZ — поворот вокруг оси Z (roll), угол в градусах.
func RotationZ(deg float64) *mat.Dense {
	s, c := math.Sincos(radians(deg))
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// EulerRotation возвращает R = Rz(roll)·Ry(yaw)·Rx(pitch). Порядок умножения менять нельзя.
func EulerRotation(pitch, yaw, roll float64) *mat.Dense {
	var zy, r mat.Dense
	zy.Mul(RotationZ(roll), RotationY(yaw))
	r.Mul(&zy, RotationX(pitch))
	return &r
}

// Rotation выбирает матрицу поворота по параметризации.
func Rotation(params entity.CameraParameters) (*mat.Dense, error) {
	switch params.Mode {
	case entity.RotationEuler:
		return EulerRotation(params.Pitch, params.Yaw, params.Roll), nil
	case entity.RotationTilt:
		return RotationX(params.TiltAngle), nil
	default:
		return nil, entity.NewParameterError("unknown rotation mode %q", params.Mode)
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
