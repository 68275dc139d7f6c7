// Package compositor implements an X11 compositing manager: it redirects
// every window on the root to off-screen storage, tracks server
// stacking order in its own forest, and repaints a dedicated overlay
// surface using alpha-correct Porter-Duff "over" compositing.
//
// It does not manage windows (placement, decoration, focus), draw
// shadows or blur, or handle input beyond making the overlay surfaces
// click-through. It speaks the wire protocol through
// [github.com/jezek/xgb] and its extension subpackages for Composite,
// Render, Damage, Shape, and XFixes.
package compositor
