// Command xoverlayd runs the compositing manager against $DISPLAY. It
// takes no flags and no arguments: the display and its authority file
// are the only inputs, resolved the same way any X client resolves
// them.
package main

import (
	"os"
	"os/signal"
	"syscall"

	compositor "github.com/kestrelcomp/xoverlayd"
	"github.com/kestrelcomp/xoverlayd/internal/cerr"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := compositor.NewLogger()

	conns, err := compositor.Dial()
	if err != nil {
		log.Error("dial", "error", err)
		return cerr.ExitCode(err)
	}
	defer conns.Close()

	if err := compositor.NegotiateExtensions(conns.Request); err != nil {
		log.Error("negotiate extensions", "error", err)
		return cerr.ExitCode(err)
	}
	if err := compositor.NegotiateEventExtensions(conns.Event); err != nil {
		log.Error("negotiate event connection extensions", "error", err)
		return cerr.ExitCode(err)
	}

	overlay, err := compositor.Bootstrap(conns)
	if err != nil {
		log.Error("bootstrap", "error", err)
		return cerr.ExitCode(err)
	}

	app := compositor.NewApp(conns, overlay, log)
	defer app.Shutdown()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("signal received, closing event connection")
		conns.Event.Close()
	}()

	if err := app.Run(); err != nil {
		log.Error("event loop", "error", err)
		return cerr.ExitCode(err)
	}

	return 0
}
