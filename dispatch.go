package compositor

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/damage"
	"github.com/jezek/xgb/xproto"

	"github.com/kestrelcomp/xoverlayd/internal/cerr"
)

// Run drains the event connection until it closes or an event handler
// reports a fatal error. All model mutation for one event completes
// before Repaint is invoked, so repaint always observes a consistent
// scene (spec §4.5).
func (a *App) Run() error {
	for {
		ev, xerr := a.Conns.Event.WaitForEvent()
		if ev == nil && xerr == nil {
			return nil // connection closed in an orderly way
		}
		if xerr != nil {
			return cerr.Wrap(cerr.CategoryServerError, xerr, "server error event")
		}

		if err := a.dispatch(ev); err != nil {
			return err
		}
	}
}

func (a *App) dispatch(ev xgb.Event) error {
	switch e := ev.(type) {
	case xproto.CreateNotifyEvent:
		return a.onCreateNotify(e)
	case xproto.DestroyNotifyEvent:
		return a.onDestroyNotify(e)
	case xproto.MapNotifyEvent:
		return a.onMapNotify(e)
	case xproto.UnmapNotifyEvent:
		return a.onUnmapNotify(e)
	case xproto.ConfigureNotifyEvent:
		return a.onConfigureNotify(e)
	case xproto.ReparentNotifyEvent:
		return a.onReparentNotify(e)
	case xproto.CirculateNotifyEvent:
		return a.onCirculateNotify(e)
	case xproto.GravityNotifyEvent:
		return a.Repaint(0, false)
	case xproto.ExposeEvent:
		return a.Repaint(0, false)
	case damage.NotifyEvent:
		return a.onDamageNotify(e)
	default:
		a.Log.Debug("unhandled extension event, skipping")
		return nil
	}
}

func (a *App) onCreateNotify(e xproto.CreateNotifyEvent) error {
	parent := e.Parent
	if parent == a.Conns.Screen.Root {
		parent = 0 // the forest's synthetic root stands for the X root window
	}
	w, err := a.Forest.AppendNewChild(parent, e.Window)
	if err != nil {
		return cerr.Wrap(cerr.CategoryModelInconsistency, err, "create-notify")
	}
	w.X, w.Y, w.Width, w.Height = e.X, e.Y, e.Width, e.Height
	w.Visible = false
	if err := attachDamage(a.Conns, w); err != nil {
		return cerr.Wrap(cerr.CategoryServerError, err, "attach damage to window %d", e.Window)
	}
	return nil
}

func (a *App) onDestroyNotify(e xproto.DestroyNotifyEvent) error {
	w, ok := a.Forest.Lookup(e.Window)
	if !ok {
		a.Log.Debug("destroy-notify for unknown window, ignoring", "window", e.Window)
		return nil
	}
	for _, cleanupErr := range destroyWindowResources(a.Conns, w) {
		a.Log.Error("cleanup during destroy-notify", "window", e.Window, "error", cleanupErr)
	}
	a.Forest.Remove(e.Window)
	return nil
}

func (a *App) onMapNotify(e xproto.MapNotifyEvent) error {
	w, ok := a.Forest.Lookup(e.Window)
	if !ok {
		return cerr.New(cerr.CategoryModelInconsistency, "map-notify for unknown window %d", e.Window)
	}
	w.Visible = true
	if err := attachPicture(a.Conns, w); err != nil {
		return cerr.Wrap(cerr.CategoryServerError, err, "attach picture to window %d", e.Window)
	}
	return a.Repaint(0, false)
}

func (a *App) onUnmapNotify(e xproto.UnmapNotifyEvent) error {
	w, ok := a.Forest.Lookup(e.Window)
	if !ok {
		return nil
	}
	w.Visible = false
	return a.Repaint(0, false)
}

func (a *App) onConfigureNotify(e xproto.ConfigureNotifyEvent) error {
	w, ok := a.Forest.Lookup(e.Window)
	if !ok {
		return cerr.New(cerr.CategoryModelInconsistency, "configure-notify for unknown window %d", e.Window)
	}
	w.X, w.Y, w.Width, w.Height = e.X, e.Y, e.Width, e.Height

	if e.AboveSibling == 0 {
		if err := a.Forest.Move(e.Window, StackBefore, 0, false); err != nil {
			return cerr.Wrap(cerr.CategoryModelInconsistency, err, "restack to bottom")
		}
	} else {
		if err := a.Forest.Move(e.Window, StackAfter, e.AboveSibling, true); err != nil {
			return cerr.Wrap(cerr.CategoryModelInconsistency, err, "restack above sibling")
		}
	}

	if err := attachRegion(a.Conns, w); err != nil {
		return cerr.Wrap(cerr.CategoryServerError, err, "attach region to window %d", e.Window)
	}
	return a.Repaint(0, false)
}

func (a *App) onReparentNotify(e xproto.ReparentNotifyEvent) error {
	parent := e.Parent
	if parent == a.Conns.Screen.Root {
		parent = 0 // the forest's synthetic root stands for the X root window
	}
	if err := a.Forest.Reparent(e.Window, parent); err != nil {
		return cerr.Wrap(cerr.CategoryModelInconsistency, err, "reparent-notify")
	}
	return nil
}

func (a *App) onCirculateNotify(e xproto.CirculateNotifyEvent) error {
	ref := StackBefore
	if e.Place == xproto.CirculatePlaceOnTop {
		ref = StackAfter
	}
	if err := a.Forest.Move(e.Window, ref, 0, false); err != nil {
		return cerr.Wrap(cerr.CategoryModelInconsistency, err, "circulate-notify")
	}
	return nil
}

func (a *App) onDamageNotify(e damage.NotifyEvent) error {
	if err := a.Repaint(xproto.Window(e.Drawable), true); err != nil {
		return cerr.Wrap(cerr.CategoryServerError, err, "repaint after damage-notify")
	}
	return nil
}
