package cannon_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"google.golang.org/grpc/test/bufconn"

	"github.com/katalvlaran/cannon/matrix"
	"github.com/katalvlaran/cannon/transport"
)

// dense builds an n×n Dense from rows.
func dense(t testing.TB, rows [][]float64) *matrix.Dense {
	t.Helper()

	n := len(rows)
	flat := make([]float64, 0, n*n)
	for _, r := range rows {
		flat = append(flat, r...)
	}
	m, err := matrix.NewDenseFrom(n, len(rows[0]), flat)
	require.NoError(t, err)

	return m
}

// random returns a deterministic n×n fixture.
func random(t testing.TB, n int, seed int64) *matrix.Dense {
	t.Helper()

	m, err := matrix.NewRandom(n, n, seed)
	require.NoError(t, err)

	return m
}

// gonumProduct computes a×b with gonum as an independent oracle.
func gonumProduct(a, b *matrix.Dense) *mat.Dense {
	n := a.Rows()
	var c mat.Dense
	c.Mul(mat.NewDense(n, n, a.Values()), mat.NewDense(n, n, b.Values()))

	return &c
}

// requireMatchesOracle checks got against both matrix.Mul and gonum.
func requireMatchesOracle(t *testing.T, a, b, got *matrix.Dense, tol float64) {
	t.Helper()

	want, err := matrix.Mul(a, b)
	require.NoError(t, err)
	ok, err := matrix.AllClose(got, want, tol, tol)
	require.NoError(t, err)
	require.True(t, ok, "distributed result differs from sequential reference\n got:\n%v want:\n%v", got, want)

	oracle := gonumProduct(a, b)
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Rows(); j++ {
			v, err := got.At(i, j)
			require.NoError(t, err)
			require.InDelta(t, oracle.At(i, j), v, tol, "(%d,%d)", i, j)
		}
	}
}

// bufMesh returns a factory of in-memory gRPC meshes.
func bufMesh(t *testing.T) func(size int) (transport.Network, error) {
	return func(size int) (transport.Network, error) {
		lis := make([]*bufconn.Listener, size)
		for i := range lis {
			lis[i] = bufconn.Listen(1 << 20)
		}
		m, err := transport.NewGRPCMesh(size,
			transport.WithListener(func(rank int) (net.Listener, error) { return lis[rank], nil }),
			transport.WithRankDialer(func(ctx context.Context, rank int) (net.Conn, error) {
				return lis[rank].DialContext(ctx)
			}),
		)
		if err != nil {
			return nil, err
		}
		t.Cleanup(func() { _ = m.Close() })

		return m, nil
	}
}

// stalledNetwork wraps a ChanNetwork so that one rank never talks.
type stalledNetwork struct {
	*transport.ChanNetwork
	dead int
}

func (s stalledNetwork) Endpoint(rank int) (transport.Transport, error) {
	ep, err := s.ChanNetwork.Endpoint(rank)
	if err != nil || rank != s.dead {
		return ep, err
	}

	return deadEndpoint{Transport: ep}, nil
}

// deadEndpoint blocks every call until the context ends.
type deadEndpoint struct{ transport.Transport }

func (deadEndpoint) Send(ctx context.Context, _ int, _ transport.Tag, _ matrix.Block) error {
	<-ctx.Done()
	return ctx.Err()
}

func (deadEndpoint) Receive(ctx context.Context, _ int, _ transport.Tag) (matrix.Block, error) {
	<-ctx.Done()
	return matrix.Block{}, ctx.Err()
}
