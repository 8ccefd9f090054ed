// SPDX-License-Identifier: MIT

// Package cannon - functional options of Multiply.
package cannon

import (
	"github.com/katalvlaran/cannon/transport"
)

// Defaults.
const (
	// DefaultWorkers is the worker count offered to the partitioner (2×2 grid).
	DefaultWorkers = 4

	// DefaultDistribution reads blocks locally from the shared inputs.
	DefaultDistribution = Broadcast
)

const (
	panicWorkersNegative = "cannon: WithWorkers: n must be ≥ 0"
	panicNilNetwork      = "cannon: WithNetwork: factory must not be nil"
	panicBadDistribution = "cannon: WithDistribution: unknown distribution"
)

// NetworkFactory builds a network of exactly size ranks for one Multiply call.
// Multiply closes the network before returning.
type NetworkFactory func(size int) (transport.Network, error)

// Option configures Multiply.
type Option func(*Options)

// Options is the effective configuration of one Multiply call.
type Options struct {
	workers      int
	network      NetworkFactory
	distribution Distribution
}

// WithWorkers sets the number of workers offered to the partitioner.
// Zero is allowed and selects the sequential fallback.
func WithWorkers(n int) Option {
	if n < 0 {
		panic(panicWorkersNegative)
	}

	return func(o *Options) { o.workers = n }
}

// WithNetwork replaces the in-process channel network.
func WithNetwork(f NetworkFactory) Option {
	if f == nil {
		panic(panicNilNetwork)
	}

	return func(o *Options) { o.network = f }
}

// WithDistribution selects Broadcast or PointToPoint skew distribution.
func WithDistribution(d Distribution) Option {
	if d != Broadcast && d != PointToPoint {
		panic(panicBadDistribution)
	}

	return func(o *Options) { o.distribution = d }
}

func gatherOptions(user ...Option) Options {
	o := Options{
		workers:      DefaultWorkers,
		network:      chanNetwork,
		distribution: DefaultDistribution,
	}
	for _, fn := range user {
		fn(&o)
	}

	return o
}

func chanNetwork(size int) (transport.Network, error) { return transport.NewChanNetwork(size) }
