// Unix/Darwin signal handling for stopping watch mode.
//
// This file is compiled on all non-Windows platforms. It listens for SIGINT
// (Ctrl+C) and SIGTERM.

//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
