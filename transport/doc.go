// SPDX-License-Identifier: MIT

// Package transport moves matrix blocks between grid workers.
//
// A Transport is one worker's endpoint: it knows its own rank and exchanges
// blocks with peers addressed by rank and Tag (scatter, shift, gather).
// Messages with the same (source, destination, tag) arrive in send order.
// Handing a block to Send transfers ownership of its Data.
//
// Three networks are provided:
//
//   - ChanNetwork: in-process unbuffered channels. Every Send is a rendezvous
//     with the matching Receive, mirroring blocking message passing.
//   - MailboxNetwork: unbounded in-process queues with non-blocking Send and a
//     Receive that fails instead of waiting. It drives the single-threaded
//     simulation, where waiting would deadlock the only goroutine.
//   - GRPCMesh: one gRPC server per rank; blocks travel through a unary
//     Deliver RPC encoded with protobuf wire primitives.
//
// Exchange pairs a Send with a Receive so that all workers of a ring can shift
// simultaneously without deadlocking on rendezvous channels.
//
// There are no retries and no built-in timeouts: a peer that never answers
// stalls its partners until the caller's context is cancelled.
package transport
