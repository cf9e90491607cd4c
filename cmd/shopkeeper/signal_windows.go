//go:build windows

package main

import (
	"os"
	"os/signal"
)

// signalChannel returns a channel notified on Ctrl+C. Windows has no SIGTERM.
func signalChannel() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return ch
}
