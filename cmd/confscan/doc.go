// Package confscan provides the command-line interface for the confscan tool.
// The root command scans its TARGET arguments; subcommands list rules,
// maintain the baseline and write a starter config file.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/redactyl/confscan/cmd/confscan"
//	func main() { confscan.Execute() }
package confscan
