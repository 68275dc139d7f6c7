package compositor

import (
	"github.com/jezek/xgb/damage"
	"github.com/jezek/xgb/render"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
)

// Resource lifecycle rules (spec §4.7):
//   - every created window gets exactly one Damage object, alive until
//     its destroy-notify;
//   - every mapped window has exactly one picture; unmap retains it,
//     destroy frees it;
//   - every configure-notify creates a fresh bounding region, replacing
//     (and freeing) whatever region preceded it.
//
// These helpers are the only places that issue the extension requests
// that create or free those per-window resources, so the rules above hold
// by construction: apart from Bootstrap creating the overlay's own
// picture, nothing outside this file calls CreatePicture, Create
// (damage), CreateRegionFromWindow, or their Free/Destroy counterparts.

// attachDamage allocates a Damage object for w on the event connection
// (creation must happen on the connection that receives the notify
// events) with report level NonEmpty.
func attachDamage(c *Connections, w *Window) error {
	id, err := c.NewEventDamage()
	if err != nil {
		return err
	}
	err = damage.CreateChecked(c.Event, id, xproto.Drawable(w.ID), damage.ReportLevelNonEmpty).Check()
	if err != nil {
		return err
	}
	w.Damage = id
	w.hasDamage = true
	return nil
}

func detachDamage(c *Connections, w *Window) error {
	if !w.hasDamage {
		return nil
	}
	err := damage.DestroyChecked(c.Event, w.Damage).Check()
	w.hasDamage = false
	return err
}

// attachPicture creates a Render picture bound to w, using the picture
// format that matches the window's own visual as reported by
// GetWindowAttributes (most client windows are opaque 24-bit, which
// Composite can still blend onto a 32-bit destination — spec §4.6's
// rationale for preferring composite over copy_area).
func attachPicture(c *Connections, w *Window) error {
	if w.hasPic {
		return nil
	}
	id, err := c.NewRequestPicture()
	if err != nil {
		return err
	}
	format, err := pictFormatForWindow(c, w.ID)
	if err != nil {
		return err
	}
	err = render.CreatePictureChecked(c.Request, id, xproto.Drawable(w.ID), format, 0, nil).Check()
	if err != nil {
		return err
	}
	w.Picture = id
	w.hasPic = true
	return nil
}

func detachPicture(c *Connections, w *Window) error {
	if !w.hasPic {
		return nil
	}
	err := render.FreePictureChecked(c.Request, w.Picture).Check()
	w.hasPic = false
	return err
}

// attachRegion replaces w's bounding region with a fresh one matching
// its current geometry, freeing the previous region first (spec §4.7:
// "the prior region, if any, is released").
func attachRegion(c *Connections, w *Window) error {
	if err := detachRegion(c, w); err != nil {
		return err
	}
	id, err := c.NewRequestRegion()
	if err != nil {
		return err
	}
	err = xfixes.CreateRegionFromWindowChecked(c.Request, id, w.ID, xfixes.RegionBounding).Check()
	if err != nil {
		return err
	}
	w.Region = id
	w.hasRegion = true
	return nil
}

func detachRegion(c *Connections, w *Window) error {
	if !w.hasRegion {
		return nil
	}
	err := xfixes.DestroyRegionChecked(c.Request, w.Region).Check()
	w.hasRegion = false
	return err
}

// pictFormatForWindow queries the window's own visual via GetWindowAttributes
// and looks up the matching Render picture format.
func pictFormatForWindow(c *Connections, win xproto.Window) (render.Pictformat, error) {
	attrs, err := xproto.GetWindowAttributes(c.Request, win).Reply()
	if err != nil {
		return 0, err
	}
	formats, err := render.QueryPictFormats(c.Request).Reply()
	if err != nil {
		return 0, err
	}
	format, ok := findPictFormatForVisual(formats, attrs.Visual)
	if !ok {
		return 0, errNoFormat{visual: attrs.Visual}
	}
	return format, nil
}

type errNoFormat struct{ visual xproto.Visualid }

func (e errNoFormat) Error() string {
	return "no picture format for visual"
}

// destroyWindowResources frees every resource attached to w ahead of
// removing it from the forest, per destroy-notify's resource effect in
// spec §4.5's event table.
func destroyWindowResources(c *Connections, w *Window) []error {
	var errs []error
	if err := detachDamage(c, w); err != nil {
		errs = append(errs, err)
	}
	if err := detachPicture(c, w); err != nil {
		errs = append(errs, err)
	}
	if err := detachRegion(c, w); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func freePicture(c *Connections, p render.Picture) error {
	return render.FreePictureChecked(c.Request, p).Check()
}

func freeColormap(c *Connections, cm xproto.Colormap) error {
	return xproto.FreeColormapChecked(c.Request, cm).Check()
}

func destroyWindow(c *Connections, w xproto.Window) error {
	return xproto.DestroyWindowChecked(c.Request, w).Check()
}
