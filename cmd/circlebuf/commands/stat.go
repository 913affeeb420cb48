package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/circlebuf/pkg/circlebuf"
	"github.com/haivivi/circlebuf/pkg/cli"
)

// statJob is the job file form of the stat command.
type statJob struct {
	Reserve int      `yaml:"reserve" json:"reserve"`
	Ops     []string `yaml:"ops" json:"ops"`
}

// statStep is the buffer state after one operation.
type statStep struct {
	Op     string `yaml:"op" json:"op"`
	Len    int    `yaml:"len" json:"len"`
	Cap    int    `yaml:"cap" json:"cap"`
	Result string `yaml:"result,omitempty" json:"result,omitempty"`
}

type statResult struct {
	Steps    []statStep `yaml:"steps" json:"steps"`
	Len      int        `yaml:"len" json:"len"`
	Cap      int        `yaml:"cap" json:"cap"`
	Contents string     `yaml:"contents" json:"contents"`
}

func (r statResult) Table() cli.Table {
	t := cli.Table{Header: []string{"OP", "LEN", "CAP", "RESULT"}}
	for _, s := range r.Steps {
		t.Rows = append(t.Rows, []string{s.Op, strconv.Itoa(s.Len), strconv.Itoa(s.Cap), s.Result})
	}
	return t
}

var statReserve int

var statCmd = &cobra.Command{
	Use:   "stat [op...]",
	Short: "Run buffer operations and report length and capacity",
	Long: `Run a sequence of operations on an empty buffer and print the length
and capacity after each one.

Operations:
  push:TEXT        append TEXT            front:TEXT     prepend TEXT
  zero:N           append N zero bytes    zerofront:N    prepend N zero bytes
  pop:N            remove N from front    popback:N      remove N from back
  peek:N           read N from front      peekback:N     read N from back
  discard:N        drop N from front      discardback:N  drop N from back
  upsize:N         grow length to N       place:POS:TEXT overwrite at POS
  reserve:N        grow capacity to N     reset          drop all content

Zero bytes print as '.'.

Examples:
  circlebuf stat --reserve 4 push:ab push:cd pop:1 push:ef
  circlebuf stat -f ops.yaml --format table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		job := statJob{Reserve: statReserve, Ops: args}
		if inputFile != "" {
			var fromFile statJob
			if err := cli.LoadRequest(inputFile, &fromFile); err != nil {
				return err
			}
			if !cmd.Flags().Changed("reserve") {
				job.Reserve = fromFile.Reserve
			}
			job.Ops = append(fromFile.Ops, job.Ops...)
		}
		cctx, err := getContext()
		if err != nil {
			return err
		}
		setupAllocator(cctx)
		if job.Reserve == 0 {
			job.Reserve = cctx.InitialCapacity
		}

		res, err := runStat(job)
		if err != nil {
			return err
		}
		return outputResult(res)
	},
}

func init() {
	statCmd.Flags().IntVar(&statReserve, "reserve", 0, "initial capacity")
}

func runStat(job statJob) (statResult, error) {
	b := circlebuf.New(nil)
	defer b.Free()
	b.Reserve(job.Reserve)

	var res statResult
	for _, op := range job.Ops {
		out, err := applyOp(b, op)
		if err != nil {
			return res, err
		}
		res.Steps = append(res.Steps, statStep{Op: op, Len: b.Len(), Cap: b.Cap(), Result: out})
	}
	res.Len = b.Len()
	res.Cap = b.Cap()
	res.Contents = printable(b.Bytes())
	return res, nil
}

func applyOp(b *circlebuf.Buffer, op string) (result string, err error) {
	name, arg, _ := strings.Cut(op, ":")

	// Out-of-range requests panic in the buffer; report them as errors.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", op, r)
		}
	}()

	num := func() (int, error) {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%s: want a non-negative count", op)
		}
		return n, nil
	}

	switch name {
	case "push":
		b.PushBack([]byte(arg))
	case "front":
		b.PushFront([]byte(arg))
	case "reset":
		b.Reset()
	case "place":
		pos, text, ok := strings.Cut(arg, ":")
		if !ok {
			return "", fmt.Errorf("%s: want place:POS:TEXT", op)
		}
		n, err := strconv.Atoi(pos)
		if err != nil || n < 0 {
			return "", fmt.Errorf("%s: bad position", op)
		}
		b.Place(n, []byte(text))
	default:
		n, err := num()
		if err != nil {
			return "", err
		}
		p := make([]byte, n)
		switch name {
		case "zero":
			b.PushBackZero(n)
		case "zerofront":
			b.PushFrontZero(n)
		case "pop":
			b.PopFront(p)
			return printable(p), nil
		case "popback":
			b.PopBack(p)
			return printable(p), nil
		case "peek":
			b.PeekFront(p)
			return printable(p), nil
		case "peekback":
			b.PeekBack(p)
			return printable(p), nil
		case "discard":
			b.DiscardFront(n)
		case "discardback":
			b.DiscardBack(n)
		case "upsize":
			b.Upsize(n)
		case "reserve":
			b.Reserve(n)
		default:
			return "", fmt.Errorf("unknown operation %q", name)
		}
	}
	return "", nil
}

func printable(p []byte) string {
	var sb strings.Builder
	for _, c := range p {
		if c == 0 {
			sb.WriteByte('.')
		} else {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
