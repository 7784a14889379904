// Windows signal handling for stopping watch mode.
//
// This file is compiled only on Windows, where only [os.Interrupt]
// (Ctrl+C / CTRL_C_EVENT) is registered. The Go runtime maps
// CTRL_BREAK_EVENT and console-close events to os.Interrupt as well.

//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// signalContext returns a context cancelled on os.Interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
