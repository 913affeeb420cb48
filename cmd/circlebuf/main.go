// Command circlebuf moves bytes through growable ring buffers.
//
// Usage:
//
//	circlebuf [flags] <command> [args]
//
// Commands:
//
//	pipe      - relay stdin to a child process, or a child's output to stdout
//	watch     - play a child's PCM output in real time and show the queue
//	snapshot  - save, load, list, prune, archive and restore buffer snapshots
//	stat      - run buffer operations and report length and capacity
//	config    - manage contexts
//
// Configuration lives in ~/.circlebuf/circlebuf/config.yaml.
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/circlebuf/cmd/circlebuf/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
