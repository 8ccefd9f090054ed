// SPDX-License-Identifier: MIT

// Package task is a small harness for numeric kernels with a fixed lifecycle:
//
//	Validation → PreProcessing → Run → PostProcessing
//
// A Task reads typed input buffers and writes caller-allocated output buffers
// described by a Data value. Validation inspects only the descriptor; when it
// reports false the pipeline stops before any buffer is read or written.
//
// Lifecycle enforces the stage order for implementations, Execute runs the
// four stages and turns a false stage into an error, and Perf measures either
// the whole pipeline or the Run stage alone.
package task
