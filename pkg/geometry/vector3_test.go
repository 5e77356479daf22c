package geometry

import (
	"math"
	"testing"
)

func TestVector3Add(t *testing.T) {
	v1 := NewVector3(1, 2, 3)
	v2 := NewVector3(4, 5, 6)
	result := v1.Add(v2)

	expected := NewVector3(5, 7, 9)
	if result != expected {
		t.Errorf("Add failed: expected %v, got %v", expected, result)
	}
}

func TestVector3Sub(t *testing.T) {
	v1 := NewVector3(5, 7, 9)
	v2 := NewVector3(1, 2, 3)
	result := v1.Sub(v2)

	expected := NewVector3(4, 5, 6)
	if result != expected {
		t.Errorf("Sub failed: expected %v, got %v", expected, result)
	}
}

func TestVector3MulDivNegate(t *testing.T) {
	v := NewVector3(1, 2, 3)

	if got := v.Mul(2); got != NewVector3(2, 4, 6) {
		t.Errorf("Mul failed: expected (2, 4, 6), got %v", got)
	}
	if got := v.Div(2); got != NewVector3(0.5, 1, 1.5) {
		t.Errorf("Div failed: expected (0.5, 1, 1.5), got %v", got)
	}
	if got := v.Div(0); got != v {
		t.Errorf("Div by zero failed: expected %v, got %v", v, got)
	}
	if got := v.Negate(); got != NewVector3(-1, -2, -3) {
		t.Errorf("Negate failed: expected (-1, -2, -3), got %v", got)
	}
}

func TestVector3Length(t *testing.T) {
	v := NewVector3(3, 4, 0)

	if length := v.Length(); math.Abs(float64(length-5)) > 1e-6 {
		t.Errorf("Length failed: expected 5, got %v", length)
	}
	if sq := v.LengthSquared(); sq != 25 {
		t.Errorf("LengthSquared failed: expected 25, got %v", sq)
	}
}

func TestVector3Distance(t *testing.T) {
	v1 := NewVector3(0, 0, 0)
	v2 := NewVector3(3, 4, 0)

	if distance := Distance(v1, v2); math.Abs(float64(distance-5)) > 1e-6 {
		t.Errorf("Distance failed: expected 5, got %v", distance)
	}
}

func TestVector3Normalize(t *testing.T) {
	v := NewVector3(3, 4, 0)
	normalized := v.Normalize()

	if length := normalized.Length(); math.Abs(float64(length-1)) > 1e-6 {
		t.Errorf("Normalize failed: expected length 1, got %v", length)
	}
}

func TestVector3NormalizeZero(t *testing.T) {
	v := Vector3{}
	if got := v.Normalize(); got != v {
		t.Errorf("Normalize of zero vector failed: expected %v, got %v", v, got)
	}

	tiny := NewVector3(1e-9, 0, 0)
	if got := tiny.Normalize(); got != tiny {
		t.Errorf("Normalize of tiny vector failed: expected %v, got %v", tiny, got)
	}
}

func TestVector3Cross(t *testing.T) {
	v1 := NewVector3(1, 0, 0)
	v2 := NewVector3(0, 1, 0)
	result := v1.Cross(v2)

	expected := NewVector3(0, 0, 1)
	if result != expected {
		t.Errorf("Cross failed: expected %v, got %v", expected, result)
	}
}

func TestVector3Dot(t *testing.T) {
	v1 := NewVector3(1, 2, 3)
	v2 := NewVector3(4, 5, 6)
	result := v1.Dot(v2)

	expected := float32(32) // 1*4 + 2*5 + 3*6 = 32
	if result != expected {
		t.Errorf("Dot failed: expected %v, got %v", expected, result)
	}
}

func TestParseAxis(t *testing.T) {
	for input, expected := range map[string]Axis{"x": AxisX, "Y": AxisY, "z": AxisZ, "": AxisZ} {
		axis, err := ParseAxis(input)
		if err != nil {
			t.Fatalf("ParseAxis(%q) failed: %v", input, err)
		}
		if axis != expected {
			t.Errorf("ParseAxis(%q) failed: expected %v, got %v", input, expected, axis)
		}
	}

	if _, err := ParseAxis("w"); err == nil {
		t.Error("ParseAxis should reject unknown axis")
	}
}

func TestRotationMovesUpAxis(t *testing.T) {
	// Rotating +Y by 90 degrees about X yields +Z
	rot := Rotation(90, 0, 0)
	got := TransformPoint(rot, NewVector3(0, 1, 0))

	if got.Distance(NewVector3(0, 0, 1)) > 1e-5 {
		t.Errorf("Rotation failed: expected (0, 0, 1), got %v", got)
	}

	n := TransformDirection(NormalMatrix(rot), NewVector3(0, 1, 0))
	if n.Distance(NewVector3(0, 0, 1)) > 1e-5 {
		t.Errorf("Normal rotation failed: expected (0, 0, 1), got %v", n)
	}
}
