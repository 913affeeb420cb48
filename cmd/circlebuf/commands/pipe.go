package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/circlebuf/pkg/buffer"
	"github.com/haivivi/circlebuf/pkg/cli"
	"github.com/haivivi/circlebuf/pkg/procpipe"
)

// pipeJob is the job file form of the pipe flags.
type pipeJob struct {
	Command  string `yaml:"command" json:"command"`
	Read     bool   `yaml:"read" json:"read"`
	PTY      bool   `yaml:"pty" json:"pty"`
	Chunk    int    `yaml:"chunk" json:"chunk"`
	Tail     int    `yaml:"tail" json:"tail"`
	Limit    int    `yaml:"limit" json:"limit"`
	Snapshot string `yaml:"snapshot" json:"snapshot"`
}

var pipeFlags pipeJob

var pipeCmd = &cobra.Command{
	Use:   "pipe [flags] -- <command> [args...]",
	Short: "Relay a stream through a ring buffer to or from a child process",
	Long: `Relay a byte stream through a ring buffer.

By default stdin is queued and written to the child's stdin in chunks of at
most --chunk bytes. With --read the child's stdout is queued and written to
stdout (or -o). With --tail N only the last N bytes are kept and delivered
when the child exits.

--snapshot NAME saves the bytes still queued when the relay stops, for
example because the child exited before reading all of its input.

Examples:
  cat audio.raw | circlebuf pipe --chunk 640 -- aplay -f S16_LE -r 16000
  circlebuf pipe --read --tail 65536 -- ./run-tests.sh
  circlebuf pipe --limit 4096 --snapshot unsent -- ./slow-consumer
  circlebuf pipe -f job.yaml`,
	RunE: runPipe,
}

func init() {
	f := pipeCmd.Flags()
	f.BoolVar(&pipeFlags.Read, "read", false, "read the child's stdout instead of feeding its stdin")
	f.BoolVar(&pipeFlags.PTY, "pty", false, "run the child on a pseudo-terminal")
	f.IntVar(&pipeFlags.Chunk, "chunk", 4096, "maximum bytes per write")
	f.IntVar(&pipeFlags.Tail, "tail", 0, "keep only the last N bytes")
	f.IntVar(&pipeFlags.Limit, "limit", 1<<20, "pause the producer while this many bytes are queued")
	f.StringVar(&pipeFlags.Snapshot, "snapshot", "", "save the remaining buffer under this name")
}

func loadPipeJob(cmd *cobra.Command, args []string) (pipeJob, error) {
	job := pipeFlags
	if inputFile != "" {
		var fromFile pipeJob
		if err := cli.LoadRequest(inputFile, &fromFile); err != nil {
			return job, err
		}
		// Flags given on the command line win over the job file.
		f := cmd.Flags()
		if !f.Changed("read") {
			job.Read = fromFile.Read
		}
		if !f.Changed("pty") {
			job.PTY = fromFile.PTY
		}
		if !f.Changed("chunk") && fromFile.Chunk > 0 {
			job.Chunk = fromFile.Chunk
		}
		if !f.Changed("tail") {
			job.Tail = fromFile.Tail
		}
		if !f.Changed("limit") && fromFile.Limit > 0 {
			job.Limit = fromFile.Limit
		}
		if !f.Changed("snapshot") {
			job.Snapshot = fromFile.Snapshot
		}
		job.Command = fromFile.Command
	}
	if len(args) > 0 {
		job.Command = strings.Join(args, " ")
	}
	if job.Command == "" {
		return job, fmt.Errorf("no command given")
	}
	if job.Chunk <= 0 {
		return job, fmt.Errorf("--chunk must be positive")
	}
	if job.Tail > 0 && !job.Read {
		return job, fmt.Errorf("--tail requires --read")
	}
	return job, nil
}

func runPipe(cmd *cobra.Command, args []string) error {
	job, err := loadPipeJob(cmd, args)
	if err != nil {
		return err
	}
	cctx, err := getContext()
	if err != nil {
		return err
	}
	heap := setupAllocator(cctx)

	// Recent log lines are kept and written to pipe.log if the child fails.
	logs := cli.NewLogWriter(64 << 10)
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.MultiWriter(os.Stderr, logs), &slog.HandlerOptions{
		Level: logLevel(),
	})))
	defer slog.SetDefault(prev)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	r := newRelay(cctx.InitialCapacity, job.Tail, job.Limit)
	status, runErr := relayChild(ctx, job, r)

	slog.Info("pipe: finished", "cmd", job.Command, "status", status,
		"bytes", r.Written(), "pending", r.Observer().Len(), "heap", cli.FormatBytes(heap.InUse()))

	if job.Snapshot != "" {
		if err := savePending(cmd.Context(), cctx, job.Snapshot, r); err != nil {
			slog.Warn("pipe: snapshot failed", "err", err)
		}
	}
	if status != 0 || runErr != nil {
		writePipeLog(logs)
	}
	if runErr != nil {
		return runErr
	}
	if status != 0 {
		return fmt.Errorf("%q exited with status %d", job.Command, status)
	}
	return nil
}

func relayChild(ctx context.Context, job pipeJob, r *buffer.Buffer) (int, error) {
	var (
		p   *procpipe.Pipe
		err error
	)
	switch {
	case job.PTY:
		p, err = procpipe.OpenPTY(ctx, job.Command, nil)
	case job.Read:
		p, err = procpipe.Open(ctx, job.Command, "r")
	default:
		p, err = procpipe.Open(ctx, job.Command, "w")
	}
	if err != nil {
		return -1, err
	}

	var relayErr error
	switch {
	case job.PTY:
		// The terminal echoes and prints the child's output; copy it out
		// while stdin is relayed in.
		out := make(chan struct{})
		go func() {
			io.Copy(os.Stdout, p)
			close(out)
		}()
		go r.Fill(os.Stdin)
		relayErr = r.Drain(p, job.Chunk)
		if relayErr == nil {
			// ^D ends input in canonical mode.
			p.Write([]byte{4})
		}
		select {
		case <-out:
		case <-ctx.Done():
		}
	case job.Read:
		dst, closeDst, err := openSink()
		if err != nil {
			p.Close()
			return -1, err
		}
		go r.Fill(p)
		relayErr = r.Drain(dst, job.Chunk)
		if err := closeDst(); err != nil && relayErr == nil {
			relayErr = err
		}
	default:
		go r.Fill(os.Stdin)
		relayErr = r.Drain(p, job.Chunk)
	}
	r.CloseWithError(errRelayAborted)

	status, closeErr := p.Close()
	copyStderr(p)
	if relayErr != nil && !errors.Is(relayErr, errRelayAborted) {
		return status, fmt.Errorf("relay: %w", relayErr)
	}
	return status, closeErr
}

func openSink() (io.Writer, func() error, error) {
	if outputFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// copyStderr forwards the child's captured stderr through the logger.
func copyStderr(p *procpipe.Pipe) {
	buf := make([]byte, procpipe.MaxStderr)
	n := p.ReadErr(buf)
	if n == 0 {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(string(buf[:n]), "\n"), "\n") {
		slog.Warn("pipe: child stderr", "line", line)
	}
}

func savePending(ctx context.Context, cctx *cli.Context, name string, r *buffer.Buffer) error {
	b := r.Pending()
	if b.Len() == 0 {
		slog.Debug("pipe: nothing pending, no snapshot")
		return nil
	}
	sp, err := openSpool(cctx)
	if err != nil {
		return err
	}
	defer sp.Close()
	info, err := sp.Save(ctx, name, b)
	if err != nil {
		return err
	}
	slog.Info("pipe: snapshot saved", "id", info.ID, "name", name, "size", cli.FormatBytes(int64(info.Size)))
	return nil
}

func writePipeLog(logs *cli.LogWriter) {
	paths, err := cli.NewPaths(appName)
	if err != nil {
		return
	}
	if err := paths.EnsureLogDir(); err != nil {
		return
	}
	path := paths.LogPath("pipe.log")
	if err := os.WriteFile(path, []byte(strings.Join(logs.Lines(), "\n")+"\n"), 0o644); err == nil {
		fmt.Fprintf(os.Stderr, "log written to %s\n", path)
	}
}

func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
