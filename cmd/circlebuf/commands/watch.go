package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/circlebuf/pkg/cli"
	"github.com/haivivi/circlebuf/pkg/pcm"
	"github.com/haivivi/circlebuf/pkg/procpipe"
)

var watchFlags struct {
	format    string
	frame     time.Duration
	prebuffer time.Duration
	latency   time.Duration
	interval  time.Duration
	width     int
	height    int
	noTUI     bool
}

var watchCmd = &cobra.Command{
	Use:   "watch [flags] -- <command> [args...]",
	Short: "Play a child's PCM output in real time and show the queue",
	Long: `Run a command that writes raw 16-bit PCM to stdout and consume it at
real-time pace through a sample queue.

Playback starts once --prebuffer of audio is queued. Each --frame tick pops
one frame; an empty queue plays silence and counts an underrun. Audio queued
beyond --latency is dropped from the front. Played audio goes to -o, or is
discarded.

The queue is drawn to stderr every --interval.

Examples:
  circlebuf watch --pcm mono16k -- ffmpeg -loglevel error -i talk.mp3 -f s16le -ar 16000 -ac 1 -
  circlebuf watch -o out.raw --latency 500ms -- ./synth`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchFlags.format, "pcm", "", "PCM format: mono16k, mono24k, mono48k, stereo48k (default from context, else mono16k)")
	f.DurationVar(&watchFlags.frame, "frame", 20*time.Millisecond, "playback frame duration")
	f.DurationVar(&watchFlags.prebuffer, "prebuffer", 200*time.Millisecond, "audio to queue before playback starts")
	f.DurationVar(&watchFlags.latency, "latency", time.Second, "maximum queued audio before dropping")
	f.DurationVar(&watchFlags.interval, "interval", 100*time.Millisecond, "redraw interval")
	f.IntVar(&watchFlags.width, "width", 64, "frame width")
	f.IntVar(&watchFlags.height, "height", 14, "frame height")
	f.BoolVar(&watchFlags.noTUI, "no-tui", false, "log a summary instead of drawing")
}

// playStats are updated by the player and read by the renderer.
type playStats struct {
	played    atomic.Int64 // bytes
	underruns atomic.Int64
	dropped   atomic.Int64 // bytes
	started   atomic.Bool
}

func resolveFormat(cctx *cli.Context) (pcm.Format, error) {
	name := watchFlags.format
	if name == "" {
		name = cctx.Format
	}
	if name == "" {
		return pcm.L16Mono16K, nil
	}
	return pcm.ParseFormat(name)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cctx, err := getContext()
	if err != nil {
		return err
	}
	setupAllocator(cctx)
	format, err := resolveFormat(cctx)
	if err != nil {
		return err
	}
	if watchFlags.frame <= 0 {
		return fmt.Errorf("--frame must be positive")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cmdline := strings.Join(args, " ")
	p, err := procpipe.Open(ctx, cmdline, "r")
	if err != nil {
		return err
	}

	q := pcm.NewQueue(format)
	defer q.Close()

	var sourceDone atomic.Bool
	copyErr := make(chan error, 1)
	go func() {
		copyErr <- pcm.Copy(q, p, format)
		sourceDone.Store(true)
	}()

	sink := pcm.Discard
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			p.Close()
			return err
		}
		defer f.Close()
		sink = pcm.ChunkWriter(f)
	}

	stats := &playStats{}
	stderr := cli.NewLogWriter(16 << 10)
	errBuf := make([]byte, 4096)

	var renderTick <-chan time.Time
	if !watchFlags.noTUI {
		t := time.NewTicker(watchFlags.interval)
		defer t.Stop()
		renderTick = t.C
	}
	playTick := time.NewTicker(watchFlags.frame)
	defer playTick.Stop()

	var playErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-renderTick:
			if n := p.ReadErr(errBuf); n > 0 {
				stderr.Write(errBuf[:n])
			}
			fmt.Fprint(os.Stderr, "\033[H\033[2J"+watchFrame(cmdline, q, stats, stderr).Render(watchFlags.width, watchFlags.height)+"\n")
		case <-playTick.C:
			done, err := playFrame(q, sink, stats, sourceDone.Load())
			if err != nil {
				playErr = err
				break loop
			}
			if done {
				break loop
			}
		}
	}

	status, closeErr := p.Close()
	if err := <-copyErr; err != nil && playErr == nil && ctx.Err() == nil {
		playErr = err
	}
	if n := p.ReadErr(errBuf); n > 0 {
		stderr.Write(errBuf[:n])
	}
	for _, line := range stderr.Lines() {
		slog.Warn("watch: child stderr", "line", line)
	}

	slog.Info("watch: finished",
		"played", cli.FormatDuration(format.Duration(stats.played.Load())),
		"underruns", stats.underruns.Load(),
		"dropped", cli.FormatDuration(format.Duration(stats.dropped.Load())),
		"status", status)

	if playErr != nil {
		return playErr
	}
	if closeErr != nil {
		return closeErr
	}
	if status != 0 && ctx.Err() == nil {
		return fmt.Errorf("%q exited with status %d", cmdline, status)
	}
	return nil
}

// playFrame plays one frame from q into sink. It reports done once the
// source has ended and the queue is empty.
func playFrame(q *pcm.Queue, sink pcm.Writer, stats *playStats, sourceDone bool) (bool, error) {
	format := q.Format()
	frame := watchFlags.frame

	if !stats.started.Load() {
		if q.Buffered() < watchFlags.prebuffer && !sourceDone {
			return false, nil
		}
		stats.started.Store(true)
	}

	if excess := q.Buffered() - watchFlags.latency; watchFlags.latency > 0 && excess > 0 {
		if c, err := q.ReadDuration(excess); err == nil {
			stats.dropped.Add(c.Len())
		}
	}

	c, err := q.ReadDuration(frame)
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		if sourceDone {
			return true, nil
		}
		stats.underruns.Add(1)
		return false, sink.Write(format.SilenceChunk(frame))
	case err != nil:
		return false, err
	}

	if err := sink.Write(c); err != nil {
		return false, err
	}
	stats.played.Add(c.Len())
	if short := frame - format.Duration(c.Len()); short > 0 && !sourceDone {
		stats.underruns.Add(1)
		return false, sink.Write(format.SilenceChunk(short))
	}
	return false, nil
}

func watchFrame(cmdline string, q *pcm.Queue, stats *playStats, stderr *cli.LogWriter) cli.Frame {
	format := q.Format()
	buffered := q.Buffered()
	status := "prebuffering"
	if stats.started.Load() {
		status = "playing"
	}

	gaugeWidth := max(watchFlags.width-6, 1)
	queue := []string{
		cli.Gauge(int64(buffered), int64(watchFlags.latency), gaugeWidth),
		fmt.Sprintf("buffered %s (%s) of %s", cli.FormatDuration(buffered),
			cli.FormatBytes(int64(q.Observer().Len())), cli.FormatDuration(watchFlags.latency)),
		fmt.Sprintf("played %s  underruns %d  dropped %s",
			cli.FormatDuration(format.Duration(stats.played.Load())),
			stats.underruns.Load(),
			cli.FormatDuration(format.Duration(stats.dropped.Load()))),
	}
	return cli.Frame{
		Styles: cli.NewStyles(cli.DefaultTheme),
		Title:  "circlebuf watch",
		Status: status,
		Sections: []cli.Section{
			{Label: " " + format.String() + " ", Lines: queue},
			{Label: " stderr ", Lines: stderr.Lines()},
		},
		Help: cmdline + "  (ctrl-c to stop)",
	}
}
