package cerr

import (
	"errors"
	"testing"
)

func TestErrorString(t *testing.T) {
	e := New(CategoryExtension, "missing %s", "Composite")
	want := "extension: missing Composite"
	if got := e.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	e := Wrap(CategoryConnect, cause, "dial %s", "/tmp/.X11-unix/X0")

	want := "connect: dial /tmp/.X11-unix/X0: socket closed"
	if got := e.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(e, cause) {
		t.Fatal("errors.Is(e, cause) = false, want true")
	}
}

func TestCategoryFatal(t *testing.T) {
	cases := []struct {
		cat   Category
		fatal bool
	}{
		{CategoryConnect, true},
		{CategoryExtension, true},
		{CategoryReplyShape, true},
		{CategoryBufferOverflow, true},
		{CategoryServerError, true},
		{CategoryModelInconsistency, true},
		{CategoryCleanup, false},
	}
	for _, c := range cases {
		if got := c.cat.Fatal(); got != c.fatal {
			t.Errorf("%s.Fatal() = %v, want %v", c.cat, got, c.fatal)
		}
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("ExitCode(nil) = %d, want 0", got)
	}
	if got := ExitCode(New(CategoryServerError, "boom")); got != 1 {
		t.Fatalf("ExitCode(err) = %d, want 1", got)
	}
}
