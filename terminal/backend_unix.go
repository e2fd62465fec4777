//go:build unix

package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// maxWriteRetries bounds consecutive interrupted writes before giving up
const maxWriteRetries = 8

type unixBackend struct {
	in      *os.File
	out     *os.File
	inFd    int
	outFd   int
	oldTerm *term.State

	sigCh    chan os.Signal
	resizeCh chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newBackend(in, out *os.File) *unixBackend {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &unixBackend{
		in:       in,
		out:      out,
		inFd:     int(in.Fd()),
		outFd:    int(out.Fd()),
		resizeCh: make(chan struct{}, 1),
	}
}

func (b *unixBackend) Init() error {
	if !term.IsTerminal(b.inFd) {
		return ErrNotTerminal
	}

	old, err := term.MakeRaw(b.inFd)
	if err != nil {
		return fmt.Errorf("make raw: %w", err)
	}
	b.oldTerm = old

	b.sigCh = make(chan os.Signal, 1)
	b.stopCh = make(chan struct{})
	b.doneCh = make(chan struct{})
	signal.Notify(b.sigCh, syscall.SIGWINCH)
	go b.watchResize()
	return nil
}

// watchResize forwards SIGWINCH as a coalesced notification
func (b *unixBackend) watchResize() {
	defer close(b.doneCh)
	for {
		select {
		case <-b.stopCh:
			return
		case <-b.sigCh:
			select {
			case b.resizeCh <- struct{}{}:
			default:
				// One pending notification is enough, size is queried on receipt
			}
		}
	}
}

func (b *unixBackend) Fini() error {
	if b.stopCh != nil {
		signal.Stop(b.sigCh)
		close(b.stopCh)
		<-b.doneCh
		b.stopCh = nil
	}
	if b.oldTerm == nil {
		return nil
	}

	err := term.Restore(b.inFd, b.oldTerm)
	if err != nil {
		// Retry via the controlling terminal, works even if stdin was swapped out
		if rerr := resetTerminalMode(); rerr != nil {
			return fmt.Errorf("%w: %v (retry: %v)", ErrRestore, err, rerr)
		}
	}
	b.oldTerm = nil
	return nil
}

func (b *unixBackend) Size() (int, int, error) {
	ws, err := unix.IoctlGetWinsize(b.outFd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	if ws.Row == 0 || ws.Col == 0 {
		return 0, 0, fmt.Errorf("zero window size %dx%d", ws.Row, ws.Col)
	}
	return int(ws.Row), int(ws.Col), nil
}

// Write writes all of p, retrying short writes and interruptions
func (b *unixBackend) Write(p []byte) (int, error) {
	total := 0
	retries := 0
	for total < len(p) {
		n, err := b.out.Write(p[total:])
		total += n
		if err == nil {
			continue
		}
		if (errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN)) && retries < maxWriteRetries {
			retries++
			continue
		}
		return total, err
	}
	return total, nil
}

// Read polls stdin for up to timeout, absorbing EINTR and EAGAIN
func (b *unixBackend) Read(buf []byte, timeout time.Duration) (int, error) {
	fds := []unix.PollFd{
		{Fd: int32(b.inFd), Events: unix.POLLIN},
	}

	ms := int(timeout / time.Millisecond)
	if timeout < 0 {
		ms = -1
	}
	n, err := unix.Poll(fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("poll: %w", err)
	}
	if n == 0 {
		return 0, nil // Timeout
	}
	if fds[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 && fds[0].Revents&unix.POLLIN == 0 {
		return 0, io.EOF
	}

	rn, err := unix.Read(b.inFd, buf)
	if err != nil {
		if err == unix.EINTR || err == unix.EAGAIN {
			return 0, nil
		}
		return 0, fmt.Errorf("read: %w", err)
	}
	if rn == 0 {
		return 0, io.EOF
	}
	return rn, nil
}

func (b *unixBackend) Resizes() <-chan struct{} {
	return b.resizeCh
}

// resetTerminalMode attempts to restore terminal to cooked mode
// Best-effort for crash recovery
func resetTerminalMode() error {
	// Try to restore via /dev/tty (works even if stdin redirected)
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer tty.Close()

	fd := int(tty.Fd())
	// Get current termios, enable ECHO and ICANON
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return err
	}
	termios.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Iflag |= unix.ICRNL
	termios.Oflag |= unix.OPOST
	return unix.IoctlSetTermios(fd, ioctlSetTermios, termios)
}

// writeTTY writes p to the controlling terminal directly
func writeTTY(p []byte) error {
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer tty.Close()
	_, err = tty.Write(p)
	return err
}
