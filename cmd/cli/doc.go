// Package cli constructs the ghssh command-line interface. It wires the Cobra
// command hierarchy, the layered Viper configuration and zap logging, and
// falls back to the interactive menu when no command is given.
package cli
