// SPDX-License-Identifier: MIT
// Package transport_test exercises the three networks through the Transport interface.
package transport_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/test/bufconn"

	"github.com/katalvlaran/cannon/matrix"
	"github.com/katalvlaran/cannon/transport"
)

// block builds a 1×1 tile holding v.
func block(v float64) matrix.Block { return matrix.Block{Size: 1, Data: []float64{v}} }

// newBufMesh starts an in-memory gRPC mesh and closes it with the test.
func newBufMesh(t *testing.T, size int, opts ...transport.MeshOption) *transport.GRPCMesh {
	t.Helper()

	lis := make([]*bufconn.Listener, size)
	for i := range lis {
		lis[i] = bufconn.Listen(1 << 20)
	}
	opts = append([]transport.MeshOption{
		transport.WithListener(func(rank int) (net.Listener, error) { return lis[rank], nil }),
		transport.WithRankDialer(func(ctx context.Context, rank int) (net.Conn, error) {
			return lis[rank].DialContext(ctx)
		}),
	}, opts...)
	m, err := transport.NewGRPCMesh(size, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	return m
}

// networks returns one fresh instance of every blocking network.
func networks(t *testing.T, size int) map[string]transport.Network {
	t.Helper()

	ch, err := transport.NewChanNetwork(size)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })

	return map[string]transport.Network{
		"chan": ch,
		"grpc": newBufMesh(t, size),
	}
}

func endpoints(t *testing.T, n transport.Network) []transport.Transport {
	t.Helper()

	out := make([]transport.Transport, n.Size())
	for r := range out {
		ep, err := n.Endpoint(r)
		require.NoError(t, err)
		require.Equal(t, r, ep.Rank())
		require.Equal(t, n.Size(), ep.Size())
		out[r] = ep
	}

	return out
}

func TestNetworks_RejectBadSize(t *testing.T) {
	t.Parallel()

	_, err := transport.NewChanNetwork(0)
	require.ErrorIs(t, err, transport.ErrBadSize)
	_, err = transport.NewMailboxNetwork(-1)
	require.ErrorIs(t, err, transport.ErrBadSize)
	_, err = transport.NewGRPCMesh(0)
	require.ErrorIs(t, err, transport.ErrBadSize)
}

// TestSendReceive_FIFO checks per-link ordering and tag separation.
func TestSendReceive_FIFO(t *testing.T) {
	t.Parallel()

	for name, n := range networks(t, 2) {
		n := n
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			eps := endpoints(t, n)

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 3; i++ {
					require.NoError(t, eps[0].Send(ctx, 1, transport.TagShiftA, block(float64(i))))
				}
				require.NoError(t, eps[0].Send(ctx, 1, transport.TagShiftB, block(100)))
			}()

			for i := 0; i < 3; i++ {
				got, err := eps[1].Receive(ctx, 0, transport.TagShiftA)
				require.NoError(t, err)
				require.Equal(t, float64(i), got.Data[0])
			}
			got, err := eps[1].Receive(ctx, 0, transport.TagShiftB)
			require.NoError(t, err)
			require.Equal(t, 100.0, got.Data[0])
			wg.Wait()
		})
	}
}

func TestSendReceive_AddressingErrors(t *testing.T) {
	t.Parallel()

	mb, err := transport.NewMailboxNetwork(2)
	require.NoError(t, err)
	nets := networks(t, 2)
	nets["mailbox"] = mb

	for name, n := range nets {
		n := n
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ep, err := n.Endpoint(0)
			require.NoError(t, err)

			require.ErrorIs(t, ep.Send(ctx, 0, transport.TagShiftA, block(1)), transport.ErrSelfSend)
			require.ErrorIs(t, ep.Send(ctx, 2, transport.TagShiftA, block(1)), transport.ErrUnknownPeer)
			require.ErrorIs(t, ep.Send(ctx, 1, transport.TagShiftA, matrix.Block{Size: 2, Data: []float64{1}}), transport.ErrBlockMismatch)
			_, err = ep.Receive(ctx, -1, transport.TagShiftA)
			require.ErrorIs(t, err, transport.ErrUnknownPeer)

			_, err = n.Endpoint(5)
			require.ErrorIs(t, err, transport.ErrUnknownPeer)
		})
	}
}

// TestReceive_UnblocksOnCloseAndCancel covers both ways out of a stalled Receive.
func TestReceive_UnblocksOnCloseAndCancel(t *testing.T) {
	t.Parallel()

	for name, n := range networks(t, 2) {
		n := n
		t.Run(name, func(t *testing.T) {
			eps := endpoints(t, n)

			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				time.Sleep(10 * time.Millisecond)
				cancel()
			}()
			_, err := eps[1].Receive(ctx, 0, transport.TagGather)
			require.ErrorIs(t, err, context.Canceled)

			errc := make(chan error, 1)
			go func() {
				_, err := eps[1].Receive(context.Background(), 0, transport.TagGather)
				errc <- err
			}()
			time.Sleep(10 * time.Millisecond)
			require.NoError(t, n.Close())
			require.ErrorIs(t, <-errc, transport.ErrClosed)
			require.ErrorIs(t, eps[0].Send(context.Background(), 1, transport.TagGather, block(1)), transport.ErrClosed)
			require.NoError(t, n.Close(), "Close is idempotent")
		})
	}
}

func TestMailbox_NonBlocking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n, err := transport.NewMailboxNetwork(3)
	require.NoError(t, err)
	eps := make([]transport.Transport, 3)
	for r := range eps {
		eps[r], err = n.Endpoint(r)
		require.NoError(t, err)
	}

	_, err = eps[2].Receive(ctx, 0, transport.TagScatterA)
	require.ErrorIs(t, err, transport.ErrNoMessage)

	require.NoError(t, eps[0].Send(ctx, 2, transport.TagScatterA, block(1)))
	require.NoError(t, eps[0].Send(ctx, 2, transport.TagScatterA, block(2)))
	require.NoError(t, eps[1].Send(ctx, 2, transport.TagScatterA, block(3)))
	require.Equal(t, 3, n.Pending())

	got, err := eps[2].Receive(ctx, 1, transport.TagScatterA)
	require.NoError(t, err)
	require.Equal(t, 3.0, got.Data[0])
	got, err = eps[2].Receive(ctx, 0, transport.TagScatterA)
	require.NoError(t, err)
	require.Equal(t, 1.0, got.Data[0])
	got, err = eps[2].Receive(ctx, 0, transport.TagScatterA)
	require.NoError(t, err)
	require.Equal(t, 2.0, got.Data[0])
	require.Zero(t, n.Pending())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, eps[0].Send(cancelled, 1, transport.TagShiftA, block(1)), context.Canceled)

	require.NoError(t, n.Close())
	require.ErrorIs(t, eps[0].Send(ctx, 1, transport.TagShiftA, block(1)), transport.ErrClosed)
	_, err = eps[1].Receive(ctx, 0, transport.TagShiftA)
	require.ErrorIs(t, err, transport.ErrClosed)
}

// TestExchange_Ring rotates one value per rank around a ring in a single step:
// every rank sends left and receives from the right at the same time.
func TestExchange_Ring(t *testing.T) {
	t.Parallel()

	for _, size := range []int{2, 3, 5} {
		for name, n := range networks(t, size) {
			size, n := size, n
			t.Run(name, func(t *testing.T) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				eps := endpoints(t, n)

				got := make([]float64, size)
				var wg sync.WaitGroup
				for r := 0; r < size; r++ {
					wg.Add(1)
					go func(r int) {
						defer wg.Done()
						left, right := (r-1+size)%size, (r+1)%size
						in, err := transport.Exchange(ctx, eps[r], left, right, transport.TagShiftA, block(float64(r)))
						require.NoError(t, err)
						got[r] = in.Data[0]
					}(r)
				}
				wg.Wait()

				for r := 0; r < size; r++ {
					require.Equal(t, float64((r+1)%size), got[r])
				}
			})
		}
	}
}

func TestExchange_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n, err := transport.NewMailboxNetwork(2)
	require.NoError(t, err)
	e0, err := n.Endpoint(0)
	require.NoError(t, err)
	e1, err := n.Endpoint(1)
	require.NoError(t, err)

	_, err = transport.Exchange(ctx, e0, 0, 1, transport.TagShiftA, block(1))
	require.ErrorIs(t, err, transport.ErrSelfSend)
	_, err = transport.Exchange(ctx, e0, 1, 7, transport.TagShiftA, block(1))
	require.ErrorIs(t, err, transport.ErrUnknownPeer)
	require.Zero(t, n.Pending(), "nothing may be sent when addressing is invalid")

	// Partner replies with a tile of a different size.
	require.NoError(t, e1.Send(ctx, 0, transport.TagShiftB, matrix.Block{Size: 2, Data: make([]float64, 4)}))
	_, err = transport.Exchange(ctx, e0, 1, 1, transport.TagShiftB, block(1))
	require.ErrorIs(t, err, transport.ErrBlockMismatch)

	// Nothing queued: the mailbox reports it instead of waiting.
	_, err = transport.Exchange(ctx, e1, 0, 0, transport.TagShiftA, block(1))
	require.ErrorIs(t, err, transport.ErrNoMessage)
}

func TestGRPCMesh_TCPLoopback(t *testing.T) {
	t.Parallel()

	m, err := transport.NewGRPCMesh(2, transport.WithMailboxDepth(1), transport.WithBlockLogging())
	require.NoError(t, err)
	defer func() { require.NoError(t, m.Close()) }()

	addr, err := m.Addr(1)
	require.NoError(t, err)
	require.Equal(t, "tcp", addr.Network())
	_, err = m.Addr(2)
	require.ErrorIs(t, err, transport.ErrUnknownPeer)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	e0, err := m.Endpoint(0)
	require.NoError(t, err)
	e1, err := m.Endpoint(1)
	require.NoError(t, err)

	tile := matrix.Block{Size: 2, Data: []float64{1, 2, 3, 4}}
	require.NoError(t, e0.Send(ctx, 1, transport.TagGather, tile))
	got, err := e1.Receive(ctx, 0, transport.TagGather)
	require.NoError(t, err)
	require.Equal(t, tile, got)
}

func TestMeshOptions_PanicOnNonsense(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { transport.WithMailboxDepth(0) })
	require.Panics(t, func() { transport.WithMaxMessageBytes(0) })
	require.Panics(t, func() { transport.WithListener(nil) })
	require.Panics(t, func() { transport.WithRankDialer(nil) })
}

func TestTag_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "shift-a", transport.TagShiftA.String())
	require.Equal(t, "gather", transport.TagGather.String())
	require.Equal(t, "tag(9)", transport.Tag(9).String())
}
