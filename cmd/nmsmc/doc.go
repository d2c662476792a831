// Package main hosts the nmsmc CLI entrypoint and command graph.
//
// The Cobra command tree turns definition files into packed mod archives,
// previews parsed plans, reports tool availability, shows the build history,
// cleans stale work directories, and scaffolds configuration. Configuration
// resolution and logger setup live in commandContext so subcommands only
// deal with their own flags and output.
package main
