package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lixenwraith/cellpaint/logging"
)

// Restorer is the resource a Guard releases
type Restorer interface {
	LeaveRawMode() error
}

// GuardOptions configures signal handling of a Guard
type GuardOptions struct {
	// Signals that trigger release, defaults to SIGINT, SIGTERM, SIGHUP, SIGQUIT
	Signals []os.Signal

	// Cancel asks the application to shut down; the guard then waits up to Grace
	// for a normal Release before forcing one. Nil forces release immediately
	Cancel func()
	Grace  time.Duration

	// Terminate runs after a forced release with its result, defaults to exiting the process
	Terminate func(err error)

	Logger *slog.Logger
}

// Guard restores the terminal exactly once: on Release, on a terminating signal, or from
// the crash handler
type Guard struct {
	r    Restorer
	opts GuardOptions
	log  *slog.Logger

	once     sync.Once
	err      error
	released chan struct{}
	sigCh    chan os.Signal
}

// AcquireGuard starts watching for terminating signals on behalf of r
// The caller must defer Release
func AcquireGuard(r Restorer, opts GuardOptions) *Guard {
	if len(opts.Signals) == 0 {
		opts.Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}
	}
	if opts.Terminate == nil {
		opts.Terminate = exitAfterRestore
	}
	if opts.Grace <= 0 {
		opts.Grace = 500 * time.Millisecond
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	g := &Guard{
		r:        r,
		opts:     opts,
		log:      log,
		released: make(chan struct{}),
		sigCh:    make(chan os.Signal, 1),
	}
	signal.Notify(g.sigCh, opts.Signals...)
	go g.watch()
	return g
}

// watch waits for a terminating signal or a normal release
func (g *Guard) watch() {
	select {
	case <-g.released:
		return
	case sig := <-g.sigCh:
		g.log.Warn("terminating signal received", "signal", sig.String())
		if g.opts.Cancel != nil {
			g.opts.Cancel()
			select {
			case <-g.released:
				return
			case <-time.After(g.opts.Grace):
				g.log.Warn("graceful shutdown timed out, forcing terminal restore")
			}
		}
		g.opts.Terminate(g.Release())
	}
}

// Release restores the terminal; subsequent calls return the first result
func (g *Guard) Release() error {
	g.once.Do(func() {
		signal.Stop(g.sigCh)
		g.err = g.r.LeaveRawMode()
		if g.err != nil {
			g.log.Error("terminal restore failed", "err", g.err)
		}
		close(g.released)
	})
	return g.err
}

// Released is closed once the terminal has been restored
func (g *Guard) Released() <-chan struct{} {
	return g.released
}

// exitAfterRestore ends the process after a signal forced the release
func exitAfterRestore(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(3)
	}
	os.Exit(0)
}
