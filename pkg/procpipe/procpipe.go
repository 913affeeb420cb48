// Package procpipe streams bytes to or from a child process.
//
// Open starts a shell command line the way popen does: a read pipe exposes
// the child's stdout, a write pipe feeds the child's stdin. OpenPTY runs the
// child behind a pseudo-terminal, which is both readable and writable.
// Close waits for the child and returns its exit status.
//
// The child's stderr is captured into a bounded tail buffer that ReadErr
// drains; the oldest bytes are dropped once the tail is full.
package procpipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/haivivi/circlebuf/pkg/blog"
	"github.com/haivivi/circlebuf/pkg/circlebuf"
)

// Shell is the interpreter used to run command lines.
var Shell = "/bin/sh"

// MaxStderr bounds the captured stderr tail in bytes.
const MaxStderr = 64 << 10

var (
	// ErrWrongDirection is returned by Read on a write pipe and by Write on
	// a read pipe.
	ErrWrongDirection = errors.New("procpipe: wrong pipe direction")

	// ErrClosed is returned by operations on a closed pipe.
	ErrClosed = errors.New("procpipe: pipe closed")
)

// Mode is the direction of a pipe.
type Mode int

const (
	// ModeRead reads the child's stdout.
	ModeRead Mode = iota + 1
	// ModeWrite writes the child's stdin.
	ModeWrite
	// ModePTY reads and writes the child's terminal.
	ModePTY
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModePTY:
		return "pty"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Pipe is a running child process with one byte stream attached.
//
// Read and Write may be used from one goroutine each; Close must be called
// exactly once by the owner and is safe to call concurrently with ReadErr.
type Pipe struct {
	cmdline string
	mode    Mode
	cmd     *exec.Cmd

	r io.ReadCloser
	w io.WriteCloser

	errMu   sync.Mutex
	errTail circlebuf.Buffer
	errDone chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
	status    int
	closeErr  error
}

// Open starts cmdline under Shell. typ follows popen: a leading 'r' opens a
// read pipe, a leading 'w' a write pipe.
func Open(ctx context.Context, cmdline, typ string) (*Pipe, error) {
	if cmdline == "" || typ == "" {
		return nil, errors.New("procpipe: empty command line or type")
	}
	var mode Mode
	switch typ[0] {
	case 'r':
		mode = ModeRead
	case 'w':
		mode = ModeWrite
	default:
		return nil, fmt.Errorf("procpipe: invalid type %q", typ)
	}

	blog.Debug("procpipe: open", "cmd", cmdline, "mode", mode)

	cmd := exec.CommandContext(ctx, Shell, "-c", cmdline)
	p := newPipe(cmdline, mode, cmd)

	var err error
	switch mode {
	case ModeRead:
		cmd.Stdin = os.Stdin
		p.r, err = cmd.StdoutPipe()
	case ModeWrite:
		cmd.Stdout = os.Stdout
		p.w, err = cmd.StdinPipe()
	}
	if err != nil {
		return nil, fmt.Errorf("procpipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("procpipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		blog.Debug("procpipe: start failed", "cmd", cmdline, "err", err)
		return nil, fmt.Errorf("procpipe: start %q: %w", cmdline, err)
	}
	go p.captureStderr(stderr)
	return p, nil
}

func newPipe(cmdline string, mode Mode, cmd *exec.Cmd) *Pipe {
	return &Pipe{
		cmdline: cmdline,
		mode:    mode,
		cmd:     cmd,
		errDone: make(chan struct{}),
		closed:  make(chan struct{}),
	}
}

func (p *Pipe) captureStderr(r io.Reader) {
	defer close(p.errDone)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			p.errMu.Lock()
			p.errTail.PushBack(buf[:n])
			if over := p.errTail.Len() - MaxStderr; over > 0 {
				p.errTail.DiscardFront(over)
			}
			p.errMu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Mode returns the pipe direction.
func (p *Pipe) Mode() Mode { return p.mode }

// Read reads from the child's stdout or terminal.
func (p *Pipe) Read(b []byte) (int, error) {
	if p.r == nil {
		return 0, ErrWrongDirection
	}
	select {
	case <-p.closed:
		return 0, ErrClosed
	default:
	}
	n, err := p.r.Read(b)
	if err != nil && p.mode == ModePTY && errors.Is(err, syscall.EIO) {
		// The terminal reports EIO once the child side is gone.
		err = io.EOF
	}
	return n, err
}

// Write writes all of b to the child's stdin or terminal. It returns the
// number of bytes written before the first error.
func (p *Pipe) Write(b []byte) (int, error) {
	if p.w == nil {
		return 0, ErrWrongDirection
	}
	select {
	case <-p.closed:
		return 0, ErrClosed
	default:
	}
	written := 0
	for written < len(b) {
		n, err := p.w.Write(b[written:])
		written += n
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}

// ReadErr moves up to len(b) bytes of captured stderr into b. It never
// blocks.
func (p *Pipe) ReadErr(b []byte) int {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	n := min(len(b), p.errTail.Len())
	p.errTail.PopFront(b[:n])
	return n
}

// Close closes the stream, waits for the child and returns its exit
// status. A child killed by a signal reports -1. err is non-nil only when
// waiting itself failed.
func (p *Pipe) Close() (status int, err error) {
	p.closeOnce.Do(func() {
		close(p.closed)
		blog.Debug("procpipe: closing", "cmd", p.cmdline, "mode", p.mode)

		// Closing our end first unblocks a child still writing to us, the
		// same way pclose does.
		if p.w != nil {
			p.w.Close()
		}
		if p.r != nil && p.mode != ModePTY {
			p.r.Close()
		}
		<-p.errDone

		werr := p.cmd.Wait()
		var exitErr *exec.ExitError
		switch {
		case werr == nil:
			p.status = 0
		case errors.As(werr, &exitErr):
			p.status = exitErr.ExitCode()
		default:
			p.status = -1
			p.closeErr = fmt.Errorf("procpipe: wait %q: %w", p.cmdline, werr)
		}
		blog.Debug("procpipe: closed", "cmd", p.cmdline, "status", p.status)
	})
	return p.status, p.closeErr
}
