package compositor

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/composite"
	"github.com/jezek/xgb/damage"
	"github.com/jezek/xgb/render"
	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"

	"github.com/kestrelcomp/xoverlayd/internal/cerr"
)

// minVersion is a required (major, minor) floor for an extension.
type minVersion struct {
	name  string
	major uint32
	minor uint32
}

// Versions negotiated at startup. Anything older than these and the
// server is missing functionality this compositor cannot run without
// (spec §4.2): there is no fallback path, only a fatal exit.
var requiredVersions = []minVersion{
	{"Composite", 0, 3},
	{"Shape", 1, 1},
	{"Render", 0, 11},
	{"Damage", 1, 1},
	{"XFixes", 2, 0},
}

// extNegotiation bundles one extension's display name (its key in
// requiredVersions; the negotiations table is keyed by the core-protocol
// name), its generated binding's Init, and a version query against conn.
type extNegotiation struct {
	name  string
	init  func(conn *xgb.Conn) error
	query func(conn *xgb.Conn) (major, minor uint32, err error)
}

func negotiations() map[string]extNegotiation {
	return map[string]extNegotiation{
		"Composite": {
			name: "Composite",
			init: composite.Init,
			query: func(conn *xgb.Conn) (uint32, uint32, error) {
				r, err := composite.QueryVersion(conn, 0, 4).Reply()
				if err != nil || r == nil {
					return 0, 0, err
				}
				return r.MajorVersion, r.MinorVersion, nil
			},
		},
		"SHAPE": {
			name: "Shape",
			init: shape.Init,
			query: func(conn *xgb.Conn) (uint32, uint32, error) {
				r, err := shape.QueryVersion(conn).Reply()
				if err != nil || r == nil {
					return 0, 0, err
				}
				return uint32(r.MajorVersion), uint32(r.MinorVersion), nil
			},
		},
		"RENDER": {
			name: "Render",
			init: render.Init,
			query: func(conn *xgb.Conn) (uint32, uint32, error) {
				r, err := render.QueryVersion(conn, 0, 11).Reply()
				if err != nil || r == nil {
					return 0, 0, err
				}
				return r.MajorVersion, r.MinorVersion, nil
			},
		},
		"DAMAGE": {
			name: "Damage",
			init: damage.Init,
			query: func(conn *xgb.Conn) (uint32, uint32, error) {
				r, err := damage.QueryVersion(conn, 1, 1).Reply()
				if err != nil || r == nil {
					return 0, 0, err
				}
				return r.MajorVersion, r.MinorVersion, nil
			},
		},
		"XFIXES": {
			name: "XFixes",
			init: xfixes.Init,
			query: func(conn *xgb.Conn) (uint32, uint32, error) {
				r, err := xfixes.QueryVersion(conn, 5, 0).Reply()
				if err != nil || r == nil {
					return 0, 0, err
				}
				return r.MajorVersion, r.MinorVersion, nil
			},
		},
	}
}

var requiredVersionByName = func() map[string]minVersion {
	m := make(map[string]minVersion, len(requiredVersions))
	for _, v := range requiredVersions {
		m[v.name] = v
	}
	return m
}()

// NegotiateExtensions queries, initializes, and version-checks every
// extension this compositor needs on conn — the full set, for the
// request connection, which issues the Composite, Shape, Render and
// XFixes requests (spec §4.1, §4.4, §4.6). Damage is negotiated here too,
// although its requests are issued on the event connection.
func NegotiateExtensions(conn *xgb.Conn) error {
	return negotiate(conn, "Composite", "SHAPE", "RENDER", "DAMAGE", "XFIXES")
}

// eventExtensionNames lists the extensions NegotiateEventExtensions
// negotiates on the event connection.
var eventExtensionNames = []string{"DAMAGE"}

// NegotiateEventExtensions negotiates just the extensions whose requests
// the event connection itself issues: Damage, via attachDamage's
// damage.CreateChecked and Repaint's damage.SubtractChecked (lifecycle.go,
// repaint.go). Spec §4.2 is explicit that QueryVersion "must be invoked
// on every connection that will issue requests of that extension";
// otherwise the server answers BadRequest (and jezek/xgb's generated
// binding panics before even sending the request, since it tracks which
// connections it has initialized).
func NegotiateEventExtensions(conn *xgb.Conn) error {
	return negotiate(conn, eventExtensionNames...)
}

// negotiate runs the present-check, Init, and version-floor check for
// each named extension, in order, on conn.
func negotiate(conn *xgb.Conn, extNames ...string) error {
	table := negotiations()

	for _, extName := range extNames {
		n, ok := table[extName]
		if !ok {
			return cerr.New(cerr.CategoryExtension, "unknown extension %s", extName)
		}

		present, err := queryCoreExtensionPresent(conn, extName)
		if err != nil {
			return cerr.Wrap(cerr.CategoryExtension, err, "query extension %s", extName)
		}
		if !present {
			return cerr.New(cerr.CategoryExtension, "%s extension not present on server", extName)
		}

		if err := n.init(conn); err != nil {
			return cerr.Wrap(cerr.CategoryExtension, err, "init %s extension", n.name)
		}

		major, minor, err := n.query(conn)
		if err != nil {
			return cerr.Wrap(cerr.CategoryExtension, err, "query %s version", n.name)
		}
		if err := checkVersionFloor(requiredVersionByName[n.name], major, minor); err != nil {
			return err
		}
	}

	return nil
}

// checkVersionFloor compares a reported (major, minor) against the
// required floor, factored out so the comparison can be unit tested
// without a live connection.
func checkVersionFloor(req minVersion, major, minor uint32) error {
	if major < req.major || (major == req.major && minor < req.minor) {
		return cerr.New(cerr.CategoryExtension, "%s %d.%d is older than required %d.%d",
			req.name, major, minor, req.major, req.minor)
	}
	return nil
}

// queryCoreExtensionPresent is a defensive check ahead of Init: a server
// with the extension compiled out won't even answer QueryExtension
// affirmatively, and Init would otherwise fail with a less specific error.
func queryCoreExtensionPresent(conn *xgb.Conn, name string) (bool, error) {
	reply, err := xproto.QueryExtension(conn, uint16(len(name)), name).Reply()
	if err != nil {
		return false, err
	}
	return reply != nil && reply.Present, nil
}
