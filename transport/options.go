// SPDX-License-Identifier: MIT

// Package transport - functional options of the gRPC mesh.
//
// Defaults bind every rank to an ephemeral loopback TCP port and dial peers
// by the listener address. Tests replace both ends with in-memory pipes.
package transport

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
)

// Mesh defaults.
const (
	// DefaultMailboxDepth is the number of undelivered blocks a rank buffers
	// per (peer, tag) before Deliver applies backpressure to the sender.
	DefaultMailboxDepth = 4

	// DefaultMaxMessageBytes caps one encoded block (≈ 8 MiB of float64 ⇒ 1024×1024 tile).
	DefaultMaxMessageBytes = 64 << 20

	// DefaultKeepaliveTime is the client ping interval on idle connections.
	DefaultKeepaliveTime = 10 * time.Second

	// DefaultKeepaliveTimeout is how long a ping may stay unanswered.
	DefaultKeepaliveTimeout = 3 * time.Second

	// defaultListenAddr is used by the default listener factory.
	defaultListenAddr = "127.0.0.1:0"
)

const (
	panicMailboxDepth    = "transport: WithMailboxDepth: depth must be ≥ 1"
	panicMaxMessageBytes = "transport: WithMaxMessageBytes: limit must be ≥ 1"
	panicNilListener     = "transport: WithListener: factory must not be nil"
	panicNilDialer       = "transport: WithRankDialer: dialer must not be nil"
)

// ListenFunc opens the listener of one rank.
type ListenFunc func(rank int) (net.Listener, error)

// RankDialer opens a connection to the server of one rank.
type RankDialer func(ctx context.Context, rank int) (net.Conn, error)

// MeshOption configures NewGRPCMesh.
type MeshOption func(*meshOptions)

type meshOptions struct {
	listen      ListenFunc
	dial        RankDialer // nil ⇒ dial listener addresses
	depth       int
	maxMsg      int
	dialOpts    []grpc.DialOption
	serverOpts  []grpc.ServerOption
	keepalive   time.Duration
	kaTimeout   time.Duration
	logPerBlock bool
}

// WithListener replaces the per-rank listener factory.
func WithListener(f ListenFunc) MeshOption {
	if f == nil {
		panic(panicNilListener)
	}

	return func(o *meshOptions) { o.listen = f }
}

// WithRankDialer makes clients reach rank r through d instead of its
// listener address. Pair it with WithListener for in-memory meshes.
func WithRankDialer(d RankDialer) MeshOption {
	if d == nil {
		panic(panicNilDialer)
	}

	return func(o *meshOptions) { o.dial = d }
}

// WithMailboxDepth sets the per (peer, tag) receive buffer.
func WithMailboxDepth(depth int) MeshOption {
	if depth < 1 {
		panic(panicMailboxDepth)
	}

	return func(o *meshOptions) { o.depth = depth }
}

// WithMaxMessageBytes raises or lowers the per-block message limit.
func WithMaxMessageBytes(limit int) MeshOption {
	if limit < 1 {
		panic(panicMaxMessageBytes)
	}

	return func(o *meshOptions) { o.maxMsg = limit }
}

// WithDialOptions appends raw grpc.DialOption values to every client.
func WithDialOptions(opts ...grpc.DialOption) MeshOption {
	return func(o *meshOptions) { o.dialOpts = append(o.dialOpts, opts...) }
}

// WithServerOptions appends raw grpc.ServerOption values to every server.
func WithServerOptions(opts ...grpc.ServerOption) MeshOption {
	return func(o *meshOptions) { o.serverOpts = append(o.serverOpts, opts...) }
}

// WithBlockLogging logs every delivered block at klog verbosity 4.
func WithBlockLogging() MeshOption {
	return func(o *meshOptions) { o.logPerBlock = true }
}

func gatherMeshOptions(user ...MeshOption) meshOptions {
	o := meshOptions{
		listen: func(int) (net.Listener, error) {
			return net.Listen("tcp", defaultListenAddr)
		},
		depth:     DefaultMailboxDepth,
		maxMsg:    DefaultMaxMessageBytes,
		keepalive: DefaultKeepaliveTime,
		kaTimeout: DefaultKeepaliveTimeout,
	}
	for _, fn := range user {
		fn(&o)
	}

	return o
}
