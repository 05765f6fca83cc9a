package main

// Flag names for Viper binding
const (
	// Global flags
	FlagVerbose       = "verbose"
	FlagConfig        = "config"
	FlagLogFile       = "log-file"
	FlagSourceFile    = "source-file"
	FlagSourceCommand = "source-command"
	FlagNoBreaker     = "no-breaker"

	// Graph flags shared by view and snapshot
	FlagThreshold = "threshold"
	FlagFilter    = "filter"

	// View command flags
	FlagWatch = "watch"

	// Snapshot command flags
	FlagFormat = "format"
	FlagTicks  = "ticks"
	FlagWidth  = "width"
	FlagHeight = "height"
	FlagSeed   = "seed"
)

// Snapshot output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)
