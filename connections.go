package compositor

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/damage"
	"github.com/jezek/xgb/render"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"

	"github.com/kestrelcomp/xoverlayd/internal/cerr"
	"github.com/kestrelcomp/xoverlayd/internal/xid"
)

// Connections is the wire I/O facade: two independent connections to the
// same display, one dedicated to receiving substructure events, the
// other to issuing requests. Splitting them keeps a burst of outbound
// composite requests from ever delaying delivery of the next event, and
// gives each connection its own sequence-number space and resource-ID
// range — jezek/xgb already keeps those per-Conn, which is what makes
// the split safe.
type Connections struct {
	Event   *xgb.Conn
	Request *xgb.Conn

	Screen *xproto.ScreenInfo

	EventIDs   *xid.Allocator
	RequestIDs *xid.Allocator
}

// Dial opens both connections against $DISPLAY (and, transitively,
// $XAUTHORITY / ~/.Xauthority — both resolved by xgb.NewConn itself,
// following the same lookup any Xlib client uses; there is no reason to
// reimplement it here).
func Dial() (*Connections, error) {
	event, err := xgb.NewConn()
	if err != nil {
		return nil, cerr.Wrap(cerr.CategoryConnect, err, "open event connection")
	}

	request, err := xgb.NewConn()
	if err != nil {
		event.Close()
		return nil, cerr.Wrap(cerr.CategoryConnect, err, "open request connection")
	}

	setup := xproto.Setup(event)
	if setup == nil || len(setup.Roots) == 0 {
		event.Close()
		request.Close()
		return nil, cerr.New(cerr.CategoryConnect, "server returned no screens")
	}
	screen := setup.DefaultScreen(event)

	eventSetup := xproto.Setup(event)
	requestSetup := xproto.Setup(request)

	c := &Connections{
		Event:      event,
		Request:    request,
		Screen:     screen,
		EventIDs:   xid.NewAllocator(eventSetup.ResourceIdBase, eventSetup.ResourceIdMask),
		RequestIDs: xid.NewAllocator(requestSetup.ResourceIdBase, requestSetup.ResourceIdMask),
	}
	return c, nil
}

// Close tears down both connections. Safe to call once; jezek/xgb's Close
// is itself idempotent-safe to call on an already-broken connection.
func (c *Connections) Close() {
	if c.Request != nil {
		c.Request.Close()
	}
	if c.Event != nil {
		c.Event.Close()
	}
}

// NewRequestWindow mints a fresh window ID on the request connection.
func (c *Connections) NewRequestWindow() (xproto.Window, error) {
	id, err := c.RequestIDs.Next()
	if err != nil {
		return 0, fmt.Errorf("allocate window id: %w", err)
	}
	return xproto.Window(id), nil
}

// NewRequestColormap mints a fresh colormap ID on the request connection.
func (c *Connections) NewRequestColormap() (xproto.Colormap, error) {
	id, err := c.RequestIDs.Next()
	if err != nil {
		return 0, fmt.Errorf("allocate colormap id: %w", err)
	}
	return xproto.Colormap(id), nil
}

// NewRequestGcontext mints a fresh graphics context ID on the request connection.
func (c *Connections) NewRequestGcontext() (xproto.Gcontext, error) {
	id, err := c.RequestIDs.Next()
	if err != nil {
		return 0, fmt.Errorf("allocate gcontext id: %w", err)
	}
	return xproto.Gcontext(id), nil
}

// NewRequestPicture mints a fresh Render picture ID on the request connection.
func (c *Connections) NewRequestPicture() (render.Picture, error) {
	id, err := c.RequestIDs.Next()
	if err != nil {
		return 0, fmt.Errorf("allocate picture id: %w", err)
	}
	return render.Picture(id), nil
}

// NewEventDamage mints a fresh Damage ID on the event connection. Damage
// creation must happen on the connection that will receive its notify
// events (spec §4.6), so this allocates from EventIDs rather than
// RequestIDs.
func (c *Connections) NewEventDamage() (damage.Damage, error) {
	id, err := c.EventIDs.Next()
	if err != nil {
		return 0, fmt.Errorf("allocate damage id: %w", err)
	}
	return damage.Damage(id), nil
}

// NewRequestRegion mints a fresh XFixes region ID on the request connection.
func (c *Connections) NewRequestRegion() (xfixes.Region, error) {
	id, err := c.RequestIDs.Next()
	if err != nil {
		return 0, fmt.Errorf("allocate region id: %w", err)
	}
	return xfixes.Region(id), nil
}
