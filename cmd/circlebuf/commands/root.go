package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/haivivi/circlebuf/pkg/blog"
	"github.com/haivivi/circlebuf/pkg/bmem"
	"github.com/haivivi/circlebuf/pkg/cli"
	"github.com/haivivi/circlebuf/pkg/spool"
)

const appName = "circlebuf"

var (
	cfgFile      string
	contextName  string
	outputFile   string
	inputFile    string
	outputFormat string
	verbose      bool

	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "circlebuf",
	Short: "Growable ring buffer toolkit",
	Long: `circlebuf moves bytes through growable double-ended ring buffers.

It relays streams between processes, queues PCM audio for real-time playback,
and keeps snapshots of buffer contents in a local index with optional
archiving to disk or S3.

Configuration is stored in ~/.circlebuf/circlebuf/ and supports multiple
contexts, similar to kubectl's context management.

Examples:
  # Relay stdin to a slow consumer in 512 byte chunks
  cat big.log | circlebuf pipe --chunk 512 -- gzip -c > big.log.gz

  # Keep only the last 4 KiB of a command's output and snapshot it
  circlebuf pipe --read --tail 4096 --snapshot build -- make

  # Inspect buffer behaviour
  circlebuf stat --reserve 4 push:ab push:cd pop:1 push:ef -o table
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.circlebuf/circlebuf/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "job file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "yaml", "result format: yaml, json, table or raw")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(pipeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(statCmd)
}

func initConfig() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var err error
	globalConfig, err = cli.LoadConfigWithPath(appName, cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

func getConfig() *cli.Config {
	return globalConfig
}

func getContext() (*cli.Context, error) {
	cfg := getConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return cfg.ResolveContext(contextName)
}

// setupAllocator installs a heap limited to the context's max_bytes as the
// default allocator.
func setupAllocator(ctx *cli.Context) *bmem.Heap {
	heap := &bmem.Heap{Limit: ctx.MaxBytes}
	bmem.SetDefault(heap)
	if ctx.MaxBytes > 0 {
		blog.Debug("circlebuf: allocator limit", "max_bytes", ctx.MaxBytes)
	}
	return heap
}

// openSpool opens the snapshot index of ctx and its archive store.
func openSpool(ctx *cli.Context) (*spool.Spool, error) {
	dir := getConfig().SpoolDir(ctx)
	index, err := spool.OpenBadger(spool.BadgerOptions{Dir: filepath.Join(dir, "index")})
	if err != nil {
		return nil, err
	}

	var archive spool.FileStore
	if ctx.S3 != nil && ctx.S3.Bucket != "" {
		archive = spool.NewS3(newS3Client(ctx.S3), ctx.S3.Bucket, ctx.S3.Prefix)
	} else {
		local, err := spool.NewLocal(filepath.Join(dir, "archive"))
		if err != nil {
			index.Close()
			return nil, err
		}
		archive = local
	}
	return spool.New(index, spool.Options{Archive: archive}), nil
}

func newS3Client(c *cli.S3Config) *s3.Client {
	opts := s3.Options{Region: c.Region}
	if c.Endpoint != "" {
		opts.BaseEndpoint = aws.String(c.Endpoint)
		opts.UsePathStyle = true
	}
	if c.AccessKey != "" {
		opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     c.AccessKey,
				SecretAccessKey: c.SecretKey,
				Source:          "circlebuf config",
			}, nil
		})
	}
	return s3.New(opts)
}

func outputResult(result any) error {
	return cli.Output(result, cli.OutputOptions{
		Format: cli.OutputFormat(outputFormat),
		File:   outputFile,
	})
}
