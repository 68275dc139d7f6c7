package compositor

import (
	"github.com/jezek/xgb/damage"
	"github.com/jezek/xgb/render"
	"github.com/jezek/xgb/xproto"
)

// Repaint walks the stacking forest bottom-to-top and composites every
// visible, picture-bearing window onto the overlay child picture, then
// re-arms the damage object that triggered this pass (spec §4.6). The
// forest's iteration order already encodes stacking order, so there is
// no separate z-index sort here — compare this to a general-purpose
// render pipeline's draw-order sort (e.g. when z-index can diverge from
// insertion order), which this core doesn't need because the forest
// itself is kept in stacking order by construction.
func (a *App) Repaint(triggeredBy xproto.Window, hasTrigger bool) error {
	it := a.Forest.BottomToTop()
	for {
		w, ok := it.Next()
		if !ok {
			break
		}
		if !w.Visible || !w.hasPic {
			continue
		}
		if err := a.compositeOne(w); err != nil {
			return err
		}
	}

	if hasTrigger {
		if w, ok := a.Forest.Lookup(triggeredBy); ok && w.hasDamage {
			err := damage.SubtractChecked(a.Conns.Event, w.Damage, 0, 0).Check()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// compositeOne issues a single Render Composite(Over) request painting
// w's picture onto the overlay child picture at w's current position.
func (a *App) compositeOne(w *Window) error {
	return render.CompositeChecked(
		a.Conns.Request,
		render.PictOpOver,
		w.Picture,
		0, // mask: None
		a.Overlay.Picture,
		0, 0, // src x, y
		0, 0, // mask x, y
		w.X, w.Y, // dst x, y
		w.Width, w.Height,
	).Check()
}
