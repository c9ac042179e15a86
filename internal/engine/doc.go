// Package engine contains the core scanning logic for confscan. It resolves
// targets into files, runs the line scanner and structured checks on each
// one in order, and returns findings with per-file skip reasons. This
// package is internal; external consumers should use the stable facade in
// pkg/core.
package engine
