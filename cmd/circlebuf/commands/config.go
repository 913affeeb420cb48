package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/circlebuf/pkg/cli"
	"github.com/haivivi/circlebuf/pkg/pcm"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage contexts: named sets of buffer and storage settings.

Configuration is stored in ~/.circlebuf/circlebuf/config.yaml`,
}

var addContextFlags struct {
	initialCapacity int
	maxBytes        int64
	spoolDir        string
	format          string
	s3              cli.S3Config
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add or replace a context",
	Long: `Add or replace a context.

Examples:
  circlebuf config add-context local --initial-capacity 65536 --max-bytes 268435456
  circlebuf config add-context minio --s3-bucket snaps --s3-endpoint http://localhost:9000 \
      --s3-access-key minio --s3-secret-key minio123`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := addContextFlags
		if f.initialCapacity < 0 || f.maxBytes < 0 {
			return fmt.Errorf("sizes must not be negative")
		}
		if f.format != "" {
			if _, err := pcm.ParseFormat(f.format); err != nil {
				return err
			}
		}
		ctx := &cli.Context{
			InitialCapacity: f.initialCapacity,
			MaxBytes:        f.maxBytes,
			SpoolDir:        f.spoolDir,
			Format:          f.format,
		}
		if f.s3.Bucket != "" {
			s3 := f.s3
			ctx.S3 = &s3
		}
		if err := getConfig().AddContext(args[0], ctx); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q added", args[0])
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getConfig().DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getConfig().UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", args[0])
		return nil
	},
}

// contextList renders contexts as a table.
type contextList struct {
	Current  string         `yaml:"current_context" json:"current_context"`
	Contexts []*cli.Context `yaml:"contexts" json:"contexts"`
}

func (l contextList) Table() cli.Table {
	t := cli.Table{Header: []string{"CURRENT", "NAME", "CAPACITY", "MAX BYTES", "ARCHIVE"}}
	for _, c := range l.Contexts {
		cur := ""
		if c.Name == l.Current {
			cur = "*"
		}
		archive := "local"
		if c.S3 != nil {
			archive = "s3://" + c.S3.Bucket
		}
		limit := "unlimited"
		if c.MaxBytes > 0 {
			limit = cli.FormatBytes(c.MaxBytes)
		}
		t.Rows = append(t.Rows, []string{cur, c.Name, strconv.Itoa(c.InitialCapacity), limit, archive})
	}
	return t
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"get-contexts"},
	Short:   "List contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		l := contextList{Current: cfg.CurrentContext}
		for _, name := range cfg.ListContexts() {
			l.Contexts = append(l.Contexts, masked(cfg.Contexts[name]))
		}
		return outputResult(l)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a context (default: current) with secrets masked",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := contextName
		if len(args) == 1 {
			name = args[0]
		}
		cfg := getConfig()
		ctx, err := cfg.ResolveContext(name)
		if err != nil {
			return err
		}
		return outputResult(struct {
			cli.Context `yaml:",inline"`
			Path        string `yaml:"config_path" json:"config_path"`
			Spool       string `yaml:"spool" json:"spool"`
		}{*masked(ctx), cfg.Path(), cfg.SpoolDir(ctx)})
	},
}

// masked returns a copy of c with S3 keys hidden.
func masked(c *cli.Context) *cli.Context {
	cp := *c
	if c.S3 != nil {
		s3 := *c.S3
		s3.AccessKey = cli.MaskSecret(s3.AccessKey)
		s3.SecretKey = cli.MaskSecret(s3.SecretKey)
		cp.S3 = &s3
	}
	return &cp
}

func init() {
	f := configAddContextCmd.Flags()
	f.IntVar(&addContextFlags.initialCapacity, "initial-capacity", 0, "bytes reserved in new buffers")
	f.Int64Var(&addContextFlags.maxBytes, "max-bytes", 0, "allocator limit in bytes (0 = unlimited)")
	f.StringVar(&addContextFlags.spoolDir, "spool-dir", "", "snapshot directory (default <config dir>/spool)")
	f.StringVar(&addContextFlags.format, "pcm", "", "default PCM format for watch")
	f.StringVar(&addContextFlags.s3.Bucket, "s3-bucket", "", "archive bucket")
	f.StringVar(&addContextFlags.s3.Prefix, "s3-prefix", "", "archive key prefix")
	f.StringVar(&addContextFlags.s3.Region, "s3-region", "us-east-1", "bucket region")
	f.StringVar(&addContextFlags.s3.Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	f.StringVar(&addContextFlags.s3.AccessKey, "s3-access-key", "", "access key id")
	f.StringVar(&addContextFlags.s3.SecretKey, "s3-secret-key", "", "secret access key")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configShowCmd)
}
