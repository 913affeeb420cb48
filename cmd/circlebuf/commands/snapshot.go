package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/circlebuf/pkg/circlebuf"
	"github.com/haivivi/circlebuf/pkg/cli"
	"github.com/haivivi/circlebuf/pkg/spool"
)

var snapshotCmd = &cobra.Command{
	Use:     "snapshot",
	Aliases: []string{"snap"},
	Short:   "Manage buffer snapshots",
	Long: `Save, load, list and archive buffer snapshots.

Snapshots are kept in a BadgerDB index under the context's spool_dir.
Archived copies go to the context's S3 bucket when one is configured, and to
<spool_dir>/archive otherwise.`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save stdin (or -f) as a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cctx, err := getContext()
		if err != nil {
			return err
		}
		setupAllocator(cctx)

		var src io.Reader = os.Stdin
		if inputFile != "" {
			f, err := os.Open(inputFile)
			if err != nil {
				return err
			}
			defer f.Close()
			src = f
		}
		b := circlebuf.New(nil)
		b.Reserve(cctx.InitialCapacity)
		if _, err := io.Copy(b, src); err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		sp, err := openSpool(cctx)
		if err != nil {
			return err
		}
		defer sp.Close()
		info, err := sp.Save(cmd.Context(), args[0], b)
		if err != nil {
			return err
		}
		return outputResult(info)
	},
}

var snapshotLoadCmd = &cobra.Command{
	Use:   "load <id|name>",
	Short: "Write a snapshot's content to stdout (or -o)",
	Long: `Write a snapshot's content to stdout, or to the -o file.

The argument is a snapshot id, or a name to load the newest snapshot with
that name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cctx, err := getContext()
		if err != nil {
			return err
		}
		setupAllocator(cctx)
		sp, err := openSpool(cctx)
		if err != nil {
			return err
		}
		defer sp.Close()

		id, err := resolveSnapshot(cmd, sp, args[0])
		if err != nil {
			return err
		}
		b, err := sp.Load(cmd.Context(), id)
		if err != nil {
			return err
		}
		defer b.Free()

		dst, closeDst, err := openSink()
		if err != nil {
			return err
		}
		if _, err := b.WriteTo(dst); err != nil {
			closeDst()
			return err
		}
		return closeDst()
	},
}

// infoList renders snapshot metadata as a table.
type infoList []spool.Info

func (l infoList) Table() cli.Table {
	t := cli.Table{Header: []string{"ID", "NAME", "SIZE", "CAPACITY", "CREATED"}}
	for _, info := range l {
		t.Rows = append(t.Rows, []string{
			info.ID,
			info.Name,
			cli.FormatBytes(int64(info.Size)),
			strconv.Itoa(info.Capacity),
			info.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return t
}

var snapshotListCmd = &cobra.Command{
	Use:   "list [name]",
	Short: "List snapshots, oldest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cctx, err := getContext()
		if err != nil {
			return err
		}
		sp, err := openSpool(cctx)
		if err != nil {
			return err
		}
		defer sp.Close()

		var name string
		if len(args) == 1 {
			name = args[0]
		}
		infos, err := sp.List(cmd.Context(), name)
		if err != nil {
			return err
		}
		return outputResult(infoList(infos))
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete snapshots from the index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cctx, err := getContext()
		if err != nil {
			return err
		}
		sp, err := openSpool(cctx)
		if err != nil {
			return err
		}
		defer sp.Close()

		for _, id := range args {
			if err := sp.Delete(cmd.Context(), id); err != nil {
				return err
			}
			cli.PrintSuccess("Snapshot %s deleted", id)
		}
		return nil
	},
}

var snapshotPruneKeep int

var snapshotPruneCmd = &cobra.Command{
	Use:   "prune <name>",
	Short: "Delete all but the newest snapshots with a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cctx, err := getContext()
		if err != nil {
			return err
		}
		sp, err := openSpool(cctx)
		if err != nil {
			return err
		}
		defer sp.Close()

		n, err := sp.Prune(cmd.Context(), args[0], snapshotPruneKeep)
		if err != nil {
			return err
		}
		cli.PrintSuccess("Removed %d snapshot(s) of %q", n, args[0])
		return nil
	},
}

var snapshotArchiveCmd = &cobra.Command{
	Use:   "archive <id|name>",
	Short: "Copy a snapshot to the archive store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cctx, err := getContext()
		if err != nil {
			return err
		}
		sp, err := openSpool(cctx)
		if err != nil {
			return err
		}
		defer sp.Close()

		id, err := resolveSnapshot(cmd, sp, args[0])
		if err != nil {
			return err
		}
		path, err := sp.Archive(cmd.Context(), id)
		if err != nil {
			return err
		}
		cli.PrintSuccess("Snapshot %s archived to %s", id, path)
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Bring an archived snapshot back into the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cctx, err := getContext()
		if err != nil {
			return err
		}
		sp, err := openSpool(cctx)
		if err != nil {
			return err
		}
		defer sp.Close()

		info, err := sp.Restore(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return outputResult(info)
	},
}

// resolveSnapshot accepts an id, or a name standing for its newest snapshot.
func resolveSnapshot(cmd *cobra.Command, sp *spool.Spool, arg string) (string, error) {
	if _, err := sp.Get(cmd.Context(), arg); err == nil {
		return arg, nil
	}
	info, err := sp.Latest(cmd.Context(), arg)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func init() {
	snapshotPruneCmd.Flags().IntVar(&snapshotPruneKeep, "keep", 1, "number of newest snapshots to keep")

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotLoadCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	snapshotCmd.AddCommand(snapshotPruneCmd)
	snapshotCmd.AddCommand(snapshotArchiveCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
}
