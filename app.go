package compositor

import (
	"log/slog"

	"github.com/kestrelcomp/xoverlayd/internal/cerr"
)

// App is the compositor's top-level state: the two connections, the
// overlay resources created at bootstrap, and the stacking forest that
// mirrors the server's window tree. Everything runs on one goroutine —
// there is no locking anywhere in this struct, the same single-threaded
// discipline the scene graph this is descended from kept for its own
// tree mutations.
type App struct {
	Conns   *Connections
	Overlay *overlay
	Forest  *Forest
	Log     *slog.Logger
}

// NewApp wires together an already-bootstrapped compositor.
func NewApp(conns *Connections, ov *overlay, log *slog.Logger) *App {
	return &App{
		Conns:   conns,
		Overlay: ov,
		Forest:  NewForest(),
		Log:     log,
	}
}

// Shutdown frees the overlay resources in reverse creation order (spec
// §4.7). Each step is attempted even if an earlier one failed; failures
// are logged under CategoryCleanup, never fatal.
func (a *App) Shutdown() {
	if a.Overlay == nil {
		return
	}
	a.free("picture", func() error { return freePicture(a.Conns, a.Overlay.Picture) })
	a.free("child overlay window", func() error { return destroyWindow(a.Conns, a.Overlay.ChildWindow) })
	a.free("colormap", func() error { return freeColormap(a.Conns, a.Overlay.Colormap) })
}

func (a *App) free(what string, fn func() error) {
	if err := fn(); err != nil {
		a.Log.Error("cleanup failed", "category", cerr.CategoryCleanup, "resource", what, "error", err)
	}
}
