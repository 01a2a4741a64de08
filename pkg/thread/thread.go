// This package is used for locking goroutines to
// the main OS thread.
// See: https://github.com/golang/go/wiki/LockOSThread
package thread

import "github.com/faiface/mainthread"

// Wrap enables functions to be executed in the main thread.
// Window and GL context creation must happen there, so the
// whole run loop is wrapped once at startup.
func Wrap(f func()) { mainthread.Run(f) }

// Main calls a function on the main thread and waits for it to finish.
func Main(f func()) { mainthread.Call(f) }
