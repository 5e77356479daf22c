package geometry

// Vector2 represents a 2D vector, used for texture coordinates
type Vector2 struct {
	X, Y float32
}

// NewVector2 creates a new 2D vector
func NewVector2(x, y float32) Vector2 {
	return Vector2{X: x, Y: y}
}

// Add returns the sum of two vectors
func (v Vector2) Add(other Vector2) Vector2 {
	return Vector2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns the difference between two vectors
func (v Vector2) Sub(other Vector2) Vector2 {
	return Vector2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul multiplies the vector by a scalar
func (v Vector2) Mul(scalar float32) Vector2 {
	return Vector2{X: v.X * scalar, Y: v.Y * scalar}
}

// Div divides the vector by a scalar. Dividing by zero yields the vector unchanged.
func (v Vector2) Div(scalar float32) Vector2 {
	if scalar == 0 {
		return v
	}
	return Vector2{X: v.X / scalar, Y: v.Y / scalar}
}

// IsZero reports whether both components are zero
func (v Vector2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
