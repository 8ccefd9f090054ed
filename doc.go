// Package cannon is the root of a small toolkit for square dense matrix
// multiplication on a P×P torus of workers (Cannon's algorithm).
//
// 🚀 What is inside?
//
//	• matrix/     Dense storage, square tiles, the sequential reference product
//	• grid/       torus coordinates, neighbour arithmetic and the partition rule
//	• transport/  point-to-point block delivery: channels, mailboxes, gRPC
//	• cannon/     workers, skew, shift loop, gather, Multiply and Simulate
//	• task/       staged task protocol (Validation → PreProcessing → Run →
//	               PostProcessing) and a perf harness
//	• matmul/     sequential and Cannon multiplication as tasks
//	• cmd/cannonperf: timing CLI
//
// Quick picture of one 3×3 torus after the skew (A tiles by block coordinate):
//
//	00 01 02
//	11 12 10
//	22 20 21
//
// Every round each worker multiplies its two tiles into its C tile, then A
// moves one step left and B one step up. After P rounds the coordinator
// (rank 0) collects the C tiles.
//
//	go get github.com/katalvlaran/cannon
package cannon
