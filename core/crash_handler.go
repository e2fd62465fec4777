package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync/atomic"

	"github.com/lixenwraith/cellpaint/terminal"
)

var (
	crashRestore atomic.Pointer[func() error]

	// Replaced in tests
	crashOut io.Writer = os.Stderr
	exit               = os.Exit
)

// SetCrashHandler registers the terminal restore run by HandleCrash, typically Guard.Release
// Nil falls back to terminal.EmergencyReset on stdout
func SetCrashHandler(restore func() error) {
	if restore == nil {
		crashRestore.Store(nil)
		return
	}
	crashRestore.Store(&restore)
}

// HandleCrash restores the terminal, prints the panic with its stack trace and exits with 1
func HandleCrash(r any) {
	if r == nil {
		return
	}

	restoreAfterCrash()
	os.Stdout.Sync()

	// Raw mode may have survived a failed restore, \r keeps lines flush left
	fmt.Fprintf(crashOut, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(crashOut, "Stack Trace:\r\n%s\r\n", debug.Stack())
	if f, ok := crashOut.(*os.File); ok {
		f.Sync()
	}

	exit(1)
}

func restoreAfterCrash() {
	if p := crashRestore.Load(); p != nil {
		if err := (*p)(); err == nil {
			return
		}
	}
	_ = terminal.EmergencyReset(os.Stdout)
}

// Go runs fn in a new goroutine whose panic restores the terminal before exiting
// Use instead of the go keyword for every long-lived goroutine while raw mode is active
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
