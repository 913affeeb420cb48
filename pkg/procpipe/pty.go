package procpipe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/creack/pty"

	"github.com/haivivi/circlebuf/pkg/blog"
)

// OpenPTY starts cmdline under Shell with a pseudo-terminal as its stdin,
// stdout and stderr. The returned pipe is readable and writable; ReadErr
// yields nothing since stderr shares the terminal.
func OpenPTY(ctx context.Context, cmdline string, size *pty.Winsize) (*Pipe, error) {
	if cmdline == "" {
		return nil, errors.New("procpipe: empty command line")
	}
	blog.Debug("procpipe: open", "cmd", cmdline, "mode", ModePTY)

	cmd := exec.CommandContext(ctx, Shell, "-c", cmdline)
	tty, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return nil, fmt.Errorf("procpipe: start %q: %w", cmdline, err)
	}

	p := newPipe(cmdline, ModePTY, cmd)
	p.r = tty
	p.w = tty
	close(p.errDone)
	return p, nil
}
