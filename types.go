package compositor

// Rect is an axis-aligned pixel rectangle in root-window coordinates,
// origin at the top-left, Y increasing downward — the same convention
// the X protocol itself uses for window geometry.
type Rect struct {
	X, Y          int16
	Width, Height uint16
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y int16) bool {
	return x >= r.X && x <= r.X+int16(r.Width) &&
		y >= r.Y && y <= r.Y+int16(r.Height)
}

// Intersects reports whether r and other overlap. Adjacent rectangles
// (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+int16(other.Width) &&
		r.X+int16(r.Width) >= other.X &&
		r.Y <= other.Y+int16(other.Height) &&
		r.Y+int16(r.Height) >= other.Y
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width == 0 || r.Height == 0
}
