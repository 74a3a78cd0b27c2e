// terminal_host.go - reads raw stdin and feeds bytes to the Motherboard's
// ASCI0 input queue; drains ASCI0's TX queue to stdout.
//
// Grounded directly on the teacher's terminal_host.go: raw mode via
// golang.org/x/term, non-blocking reads via syscall.SetNonblock, a
// goroutine polling with a short sleep on EAGAIN, and a stop channel
// joined by a done channel. Only instantiated from cmd/z180emu/main.go —
// never in tests.

package z180emu

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// TerminalHost adapts a live terminal to a Motherboard: it feeds raw stdin
// bytes into EnqueueInput and implements ConsoleSink to print drained
// output.
type TerminalHost struct {
	board *Motherboard

	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once

	fd           int
	nonblockSet  bool
	oldTermState *term.State
}

func NewTerminalHost(board *Motherboard) *TerminalHost {
	return &TerminalHost{
		board:  board,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// WriteConsole implements ConsoleSink by printing bytes drained from ASCI0.
func (h *TerminalHost) WriteConsole(b []byte) {
	os.Stdout.Write(b)
}

// Start puts stdin into raw, non-blocking mode and begins feeding bytes
// into the board's input queue on a goroutine. Call Stop to restore stdin.
func (h *TerminalHost) Start() {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldTermState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		close(h.done)
		return
	}
	h.nonblockSet = true

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := syscall.Read(h.fd, buf)
			if n > 0 {
				b := buf[0]
				// Raw mode sends CR for Enter; the guest console expects CR too.
				if b == 0x7F {
					b = 0x08
				}
				h.board.EnqueueInput(b)
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
}

// Stop terminates the stdin-reading goroutine and restores stdin to its
// prior blocking, cooked mode.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}

// PasteText enqueues text as a stream of input bytes, normalizing CRLF and
// lone LF to CR so multi-line pastes land on the guest the way a real
// terminal's Enter key would.
func (h *TerminalHost) PasteText(text string) {
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b == '\r' {
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			h.board.EnqueueInput('\r')
			continue
		}
		if b == '\n' {
			h.board.EnqueueInput('\r')
			continue
		}
		h.board.EnqueueInput(b)
	}
}
