package compositor

import (
	"encoding/binary"
	"os"

	"github.com/jezek/xgb/composite"
	"github.com/jezek/xgb/render"
	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xproto"

	"github.com/kestrelcomp/xoverlayd/internal/cerr"
)

const (
	depthARGB            = 32
	visualClassTrueColor = byte(xproto.VisualClassTrueColor)
)

// overlay holds the resources the bootstrap sequence creates once, ahead
// of any window being seen by the dispatcher.
type overlay struct {
	ServerWindow xproto.Window  // composite.get_overlay_window's result
	ChildWindow  xproto.Window  // our own 32-bit ARGB child of ServerWindow
	Colormap     xproto.Colormap
	Picture      render.Picture
	PictFormat   render.Pictformat
}

// matchTrueColorARGB finds the depth-32 TrueColor visual on screen, which
// is required for alpha-preserving composite onto the overlay (spec §4.4
// step 3).
func matchTrueColorARGB(screen *xproto.ScreenInfo) (xproto.Visualid, bool) {
	for _, d := range screen.AllowedDepths {
		if d.Depth != depthARGB {
			continue
		}
		for _, v := range d.Visuals {
			if v.Class == visualClassTrueColor {
				return v.VisualId, true
			}
		}
	}
	return 0, false
}

// findPictFormatForVisual finds the Render picture format whose visual ID
// matches visual, required to bind a Render picture to our ARGB window
// (spec §4.4 step 4).
func findPictFormatForVisual(formats *render.QueryPictFormatsReply, visual xproto.Visualid) (render.Pictformat, bool) {
	for _, screen := range formats.Screens {
		for _, d := range screen.Depths {
			for _, v := range d.Visuals {
				if v.Visual == visual {
					return v.Format, true
				}
			}
		}
	}
	return 0, false
}

// Bootstrap runs the compositor startup sequence (spec §4.4) on the
// request connection, then arms substructure notification on the event
// connection. All steps run in order; any failure is fatal — there is
// no partial-bootstrap recovery path since nothing is paintable yet.
func Bootstrap(c *Connections) (*overlay, error) {
	root := c.Screen.Root

	if err := composite.RedirectSubwindowsChecked(c.Request, root, composite.RedirectManual).Check(); err != nil {
		return nil, cerr.Wrap(cerr.CategoryServerError, err, "redirect_subwindows(manual)")
	}

	overlayReply, err := composite.GetOverlayWindow(c.Request, root).Reply()
	if err != nil {
		return nil, cerr.Wrap(cerr.CategoryServerError, err, "get_overlay_window")
	}
	ov := &overlay{ServerWindow: overlayReply.OverlayWin}

	visual, ok := matchTrueColorARGB(c.Screen)
	if !ok {
		return nil, cerr.New(cerr.CategoryServerError, "no 32-bit TrueColor visual on screen")
	}

	colormapID, err := c.NewRequestColormap()
	if err != nil {
		return nil, cerr.Wrap(cerr.CategoryServerError, err, "allocate colormap id")
	}
	if err := xproto.CreateColormapChecked(c.Request, xproto.ColormapAllocNone, colormapID, root, visual).Check(); err != nil {
		return nil, cerr.Wrap(cerr.CategoryServerError, err, "create_colormap")
	}
	ov.Colormap = colormapID

	childID, err := c.NewRequestWindow()
	if err != nil {
		return nil, cerr.Wrap(cerr.CategoryServerError, err, "allocate child overlay window id")
	}

	mask := uint32(xproto.CwBackPixel | xproto.CwBorderPixel | xproto.CwColormap)
	values := []uint32{0x00000000, 0x00000000, uint32(colormapID)}
	width, height := c.Screen.WidthInPixels, c.Screen.HeightInPixels
	if err := xproto.CreateWindowChecked(
		c.Request, depthARGB, childID, ov.ServerWindow,
		0, 0, width, height, 0,
		xproto.WindowClassInputOutput, visual, mask, values,
	).Check(); err != nil {
		return nil, cerr.Wrap(cerr.CategoryServerError, err, "create child overlay window")
	}
	ov.ChildWindow = childID

	if err := setClientIdentity(c, childID); err != nil {
		return nil, err
	}

	formats, err := render.QueryPictFormats(c.Request).Reply()
	if err != nil {
		return nil, cerr.Wrap(cerr.CategoryServerError, err, "query_pict_formats")
	}
	pictFormat, ok := findPictFormatForVisual(formats, visual)
	if !ok {
		return nil, cerr.New(cerr.CategoryServerError, "no picture format for ARGB visual")
	}
	ov.PictFormat = pictFormat

	pictureID, err := c.NewRequestPicture()
	if err != nil {
		return nil, cerr.Wrap(cerr.CategoryServerError, err, "allocate picture id")
	}
	if err := render.CreatePictureChecked(c.Request, pictureID, xproto.Drawable(childID), pictFormat, 0, nil).Check(); err != nil {
		return nil, cerr.Wrap(cerr.CategoryServerError, err, "create_picture (child overlay)")
	}
	ov.Picture = pictureID

	if err := installEmptyInputShape(c, ov.ServerWindow); err != nil {
		return nil, err
	}
	if err := installEmptyInputShape(c, ov.ChildWindow); err != nil {
		return nil, err
	}

	if err := xproto.ChangeWindowAttributesChecked(
		c.Event, root, xproto.CwEventMask, []uint32{xproto.EventMaskSubstructureNotify},
	).Check(); err != nil {
		return nil, cerr.Wrap(cerr.CategoryServerError, err, "set substructure-notify on root")
	}

	if err := xproto.MapWindowChecked(c.Request, childID).Check(); err != nil {
		return nil, cerr.Wrap(cerr.CategoryServerError, err, "map child overlay window")
	}

	return ov, nil
}

// setClientIdentity sets _NET_WM_PID and WM_CLIENT_MACHINE on win, the
// EWMH/ICCCM pairing that lets a client (or `xprop`) trace the window
// back to the process and host that own it (spec §6).
func setClientIdentity(c *Connections, win xproto.Window) error {
	pidAtom, err := internAtom(c, "_NET_WM_PID")
	if err != nil {
		return cerr.Wrap(cerr.CategoryServerError, err, "intern _NET_WM_PID atom")
	}
	machineAtom, err := internAtom(c, "WM_CLIENT_MACHINE")
	if err != nil {
		return cerr.Wrap(cerr.CategoryServerError, err, "intern WM_CLIENT_MACHINE atom")
	}

	pid := make([]byte, 4)
	binary.LittleEndian.PutUint32(pid, uint32(os.Getpid()))
	if err := xproto.ChangePropertyChecked(
		c.Request, xproto.PropModeReplace, win, pidAtom, xproto.AtomCardinal, 32, 1, pid,
	).Check(); err != nil {
		return cerr.Wrap(cerr.CategoryServerError, err, "set _NET_WM_PID")
	}

	host, err := os.Hostname()
	if err != nil {
		return cerr.Wrap(cerr.CategoryServerError, err, "look up hostname")
	}
	if err := xproto.ChangePropertyChecked(
		c.Request, xproto.PropModeReplace, win, machineAtom, xproto.AtomString, 8, uint32(len(host)), []byte(host),
	).Check(); err != nil {
		return cerr.Wrap(cerr.CategoryServerError, err, "set WM_CLIENT_MACHINE")
	}

	return nil
}

// internAtom resolves an atom name to its server-assigned id.
func internAtom(c *Connections, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.Request, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

// installEmptyInputShape makes win input-transparent: an empty Shape
// "input" region means every pointer event passes through to whatever
// sits below it (spec §4.4 step 5, §4 Non-goals: no input handling).
func installEmptyInputShape(c *Connections, win xproto.Window) error {
	err := shape.RectanglesChecked(
		c.Request,
		shape.SoSet,
		shape.SkInput,
		0, // ClipOrdering: unordered
		win,
		0, 0,
		nil,
	).Check()
	if err != nil {
		return cerr.Wrap(cerr.CategoryServerError, err, "shape.rectangles(input, empty) on window %d", win)
	}
	return nil
}
