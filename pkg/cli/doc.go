// Package cli holds the plumbing shared by the circlebuf command: contexts
// stored in ~/.circlebuf/<app>/config.yaml (kubectl style), output in yaml,
// json, raw or table form, job files, a bounded log tail and a lipgloss
// status frame.
//
//	cfg, err := cli.LoadConfig("circlebuf")
//	ctx, err := cfg.ResolveContext("")
//	cli.Output(result, cli.OutputOptions{Format: cli.FormatJSON})
package cli
