package geometry

import (
	"fmt"
	"strings"
)

// Epsilon is the float32 machine epsilon. Cross products shorter than this
// are treated as degenerate.
const Epsilon float32 = 1.1920929e-07

// Axis identifies one of the three coordinate axes
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Up is the default fallback normal for degenerate geometry
var Up = Vector3{X: 0, Y: 0, Z: 1}

// ParseAxis converts "x", "y" or "z" (case-insensitive) to an Axis
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z", "":
		return AxisZ, nil
	}
	return AxisZ, fmt.Errorf("invalid axis %q (must be x, y or z)", s)
}

// Unit returns the positive unit vector along the axis
func (a Axis) Unit() Vector3 {
	switch a {
	case AxisX:
		return Vector3{X: 1}
	case AxisY:
		return Vector3{Y: 1}
	default:
		return Vector3{Z: 1}
	}
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "z"
	}
}
