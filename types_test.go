package compositor

import "testing"

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 20}

	cases := []struct {
		x, y int16
		want bool
	}{
		{10, 10, true},  // top-left corner, inclusive
		{30, 30, true},  // bottom-right corner, inclusive
		{20, 20, true},  // interior
		{9, 10, false},  // just left of the rect
		{10, 31, false}, // just below the rect
	}
	for _, c := range cases {
		if got := r.Contains(c.x, c.y); got != c.want {
			t.Errorf("Rect{%v}.Contains(%d, %d) = %v, want %v", r, c.x, c.y, got, c.want)
		}
	}
}

func TestRectIntersects(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}

	cases := []struct {
		name string
		o    Rect
		want bool
	}{
		{"overlapping", Rect{X: 5, Y: 5, Width: 10, Height: 10}, true},
		{"adjacent edge", Rect{X: 10, Y: 0, Width: 10, Height: 10}, true},
		{"disjoint", Rect{X: 20, Y: 20, Width: 5, Height: 5}, false},
	}
	for _, c := range cases {
		if got := r.Intersects(c.o); got != c.want {
			t.Errorf("%s: Intersects = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestRectEmpty(t *testing.T) {
	if (Rect{Width: 0, Height: 5}).Empty() != true {
		t.Fatal("zero width rect should be empty")
	}
	if (Rect{Width: 5, Height: 5}).Empty() != false {
		t.Fatal("non-zero rect should not be empty")
	}
}
