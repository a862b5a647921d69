package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// RotationMode задаёт параметризацию ориентации камеры.
type RotationMode string

const (
	RotationEuler RotationMode = "euler" // pitch/yaw/roll, R = Rz·Ry·Rx
	RotationTilt  RotationMode = "tilt"  // один наклон вокруг оси X
)

// PrincipalPoint — оптический центр в пикселях.
type PrincipalPoint struct {
	X float64
	Y float64
}

// CameraParameters описывает внешнюю ориентацию и внутренние параметры камеры.
// Углы задаются в градусах.
type CameraParameters struct {
	CameraHeight float64 // метаданные, в матрицы не входит
	Mode         RotationMode
	Pitch        float64
	Yaw          float64
	Roll         float64
	TiltAngle    float64
	FocalLength  float64
	// PrincipalPoint == nil означает центр изображения.
	PrincipalPoint *PrincipalPoint
}

// NewEulerParameters создаёт трёхосевые параметры с центром в середине кадра.
func NewEulerParameters(cameraHeight, pitch, yaw, roll, focalLength float64) CameraParameters {
	return CameraParameters{
		CameraHeight: cameraHeight,
		Mode:         RotationEuler,
		Pitch:        pitch,
		Yaw:          yaw,
		Roll:         roll,
		FocalLength:  focalLength,
	}
}

// NewTiltParameters создаёт одноосевые параметры.
func NewTiltParameters(cameraHeight, tiltAngle, focalLength float64, pp *PrincipalPoint) CameraParameters {
	return CameraParameters{
		CameraHeight:   cameraHeight,
		Mode:           RotationTilt,
		TiltAngle:      tiltAngle,
		FocalLength:    focalLength,
		PrincipalPoint: pp,
	}
}

// Principal возвращает оптический центр для кадра заданного размера.
// Без явного значения берётся центр (width/2, height/2) с целочисленным делением.
func (p CameraParameters) Principal(width, height int) PrincipalPoint {
	if p.PrincipalPoint != nil {
		return *p.PrincipalPoint
	}
	return PrincipalPoint{X: float64(width / 2), Y: float64(height / 2)}
}

// Validate проверяет параметры до начала вычислений.
// Нулевое фокусное расстояние пропускается: это вырожденная K, её отвергает геометрия.
func (p CameraParameters) Validate() error {
	switch p.Mode {
	case RotationEuler, RotationTilt:
	default:
		return NewParameterError("unknown rotation mode %q", p.Mode)
	}
	for name, v := range map[string]float64{
		"camera_height": p.CameraHeight,
		"pitch":         p.Pitch,
		"yaw":           p.Yaw,
		"roll":          p.Roll,
		"tilt_angle":    p.TiltAngle,
		"focal_length":  p.FocalLength,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewParameterError("%s must be finite", name)
		}
	}
	if p.FocalLength < 0 {
		return NewParameterError("focal_length must not be negative, got %v", p.FocalLength)
	}
	if pp := p.PrincipalPoint; pp != nil {
		if math.IsNaN(pp.X) || math.IsInf(pp.X, 0) || math.IsNaN(pp.Y) || math.IsInf(pp.Y, 0) {
			return NewParameterError("principal_point must be finite")
		}
	}
	return nil
}

// String выводит параметры в человекочитаемом виде.
func (p CameraParameters) String() string {
	var b strings.Builder
	if p.Mode == RotationTilt {
		fmt.Fprintf(&b, "tilt=%.2f°", p.TiltAngle)
	} else {
		fmt.Fprintf(&b, "pitch=%.2f° yaw=%.2f° roll=%.2f°", p.Pitch, p.Yaw, p.Roll)
	}
	fmt.Fprintf(&b, " f=%.2f", p.FocalLength)
	if p.PrincipalPoint != nil {
		fmt.Fprintf(&b, " pp=(%.1f, %.1f)", p.PrincipalPoint.X, p.PrincipalPoint.Y)
	} else {
		b.WriteString(" pp=center")
	}
	fmt.Fprintf(&b, " height=%.2f", p.CameraHeight)
	return b.String()
}

// rawParameters — JSON-форма параметров; указатели отличают отсутствие ключа от нуля.
type rawParameters struct {
	CameraHeight   *float64  `json:"camera_height"`
	TiltAngle      *float64  `json:"tilt_angle"`
	Pitch          *float64  `json:"pitch"`
	Yaw            *float64  `json:"yaw"`
	Roll           *float64  `json:"roll"`
	FocalLength    *float64  `json:"focal_length"`
	PrincipalPoint []float64 `json:"principal_point"`
}

// ParseTiltParameters разбирает строгий JSON командного режима:
// обязательны camera_height, tilt_angle, focal_length и principal_point.
func ParseTiltParameters(data []byte) (CameraParameters, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return CameraParameters{}, err
	}
	var missing []string
	if raw.CameraHeight == nil {
		missing = append(missing, "camera_height")
	}
	if raw.TiltAngle == nil {
		missing = append(missing, "tilt_angle")
	}
	if raw.FocalLength == nil {
		missing = append(missing, "focal_length")
	}
	if raw.PrincipalPoint == nil {
		missing = append(missing, "principal_point")
	}
	if len(missing) > 0 {
		return CameraParameters{}, NewParameterError("missing required keys: %s", strings.Join(missing, ", "))
	}
	pp, err := principalFromSlice(raw.PrincipalPoint)
	if err != nil {
		return CameraParameters{}, err
	}
	params := NewTiltParameters(*raw.CameraHeight, *raw.TiltAngle, *raw.FocalLength, pp)
	return params, params.Validate()
}

// ParseParameters разбирает JSON в любой из двух параметризаций.
// Наличие pitch, yaw или roll выбирает трёхосевую; иначе обязателен tilt_angle.
// principal_point и camera_height необязательны.
func ParseParameters(data []byte) (CameraParameters, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return CameraParameters{}, err
	}
	if raw.FocalLength == nil {
		return CameraParameters{}, NewParameterError("missing required keys: focal_length")
	}

	euler := raw.Pitch != nil || raw.Yaw != nil || raw.Roll != nil
	if euler && raw.TiltAngle != nil {
		return CameraParameters{}, NewParameterError("tilt_angle cannot be combined with pitch/yaw/roll")
	}
	if !euler && raw.TiltAngle == nil {
		return CameraParameters{}, NewParameterError("missing required keys: tilt_angle or pitch/yaw/roll")
	}

	var params CameraParameters
	if euler {
		params = NewEulerParameters(deref(raw.CameraHeight), deref(raw.Pitch), deref(raw.Yaw), deref(raw.Roll), *raw.FocalLength)
	} else {
		params = NewTiltParameters(deref(raw.CameraHeight), *raw.TiltAngle, *raw.FocalLength, nil)
	}
	if raw.PrincipalPoint != nil {
		pp, err := principalFromSlice(raw.PrincipalPoint)
		if err != nil {
			return CameraParameters{}, err
		}
		params.PrincipalPoint = pp
	}
	return params, params.Validate()
}

// MarshalJSON кодирует параметры в ту же форму, что принимает ParseParameters.
func (p CameraParameters) MarshalJSON() ([]byte, error) {
	raw := rawParameters{
		CameraHeight: &p.CameraHeight,
		FocalLength:  &p.FocalLength,
	}
	if p.Mode == RotationTilt {
		raw.TiltAngle = &p.TiltAngle
	} else {
		raw.Pitch, raw.Yaw, raw.Roll = &p.Pitch, &p.Yaw, &p.Roll
	}
	if p.PrincipalPoint != nil {
		raw.PrincipalPoint = []float64{p.PrincipalPoint.X, p.PrincipalPoint.Y}
	}
	return json.Marshal(raw)
}

func decodeRaw(data []byte) (rawParameters, error) {
	var raw rawParameters
	if err := json.Unmarshal(data, &raw); err != nil {
		return rawParameters{}, NewParameterError("malformed parameter blob: %v", err)
	}
	return raw, nil
}

func principalFromSlice(v []float64) (*PrincipalPoint, error) {
	if len(v) != 2 {
		return nil, NewParameterError("principal_point must have exactly 2 values, got %d", len(v))
	}
	return &PrincipalPoint{X: v[0], Y: v[1]}, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
