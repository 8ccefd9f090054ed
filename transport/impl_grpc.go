// SPDX-License-Identifier: MIT

// Package transport - gRPC mesh.
//
// Purpose:
//   - Every rank runs a grpc.Server exposing the unary cannon.Mesh/Deliver RPC.
//   - Send is one Deliver call to the destination rank; it returns once the
//     block sits in the destination's mailbox for (sender, tag).
//   - Receive pops the mailbox of (peer, tag) and blocks while it is empty.
//
// Per-link ordering holds because an endpoint issues its Sends to one peer
// and tag one after another, and each returns only after the block is queued.

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
	"k8s.io/klog/v2"

	"github.com/katalvlaran/cannon/matrix"
)

const (
	meshService   = "cannon.Mesh"
	deliverMethod = "/" + meshService + "/Deliver"
)

// meshServer is the service implemented by every rank.
type meshServer interface {
	deliver(ctx context.Context, e *envelope) (*ack, error)
}

var meshServiceDesc = grpc.ServiceDesc{
	ServiceName: meshService,
	HandlerType: (*meshServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Deliver", Handler: deliverHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cannon/mesh",
}

func deliverHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(envelope)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(meshServer).deliver(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: deliverMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(meshServer).deliver(ctx, req.(*envelope))
	}

	return interceptor(ctx, in, info, handler)
}

// GRPCMesh is a Network whose ranks talk over gRPC.
type GRPCMesh struct {
	size  int
	opts  meshOptions
	nodes []*meshNode
	conns []*grpc.ClientConn // conns[r] reaches rank r; shared by all senders

	serving   errgroup.Group
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewGRPCMesh starts `size` gRPC servers and one client connection per rank.
// MAIN DESCRIPTION:
//   - Stage 1: open a listener per rank and register the Deliver service.
//   - Stage 2: serve every listener in its own goroutine.
//   - Stage 3: create lazy clients (grpc.NewClient); connections are
//     established by the first Send.
//
// Errors:
//   - ErrBadSize for size <= 0.
//   - Listener or client construction failures; everything built so far is
//     torn down before returning.
func NewGRPCMesh(size int, opts ...MeshOption) (*GRPCMesh, error) {
	if size <= 0 {
		return nil, ErrBadSize
	}
	m := &GRPCMesh{
		size:  size,
		opts:  gatherMeshOptions(opts...),
		nodes: make([]*meshNode, size),
		conns: make([]*grpc.ClientConn, size),
		done:  make(chan struct{}),
	}

	var err error
	for rank := 0; rank < size; rank++ {
		if m.nodes[rank], err = m.startNode(rank); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("NewGRPCMesh: rank %d: %w", rank, err)
		}
	}
	for rank := 0; rank < size; rank++ {
		if m.conns[rank], err = m.dial(rank); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("NewGRPCMesh: dial rank %d: %w", rank, err)
		}
	}
	klog.V(1).InfoS("grpc mesh up", "ranks", size, "mailboxDepth", m.opts.depth)

	return m, nil
}

func (m *GRPCMesh) startNode(rank int) (*meshNode, error) {
	lis, err := m.opts.listen(rank)
	if err != nil {
		return nil, err
	}

	serverOpts := append([]grpc.ServerOption{
		grpc.ForceServerCodec(blockCodec{}),
		grpc.MaxRecvMsgSize(m.opts.maxMsg),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             m.opts.keepalive / 2,
			PermitWithoutStream: true,
		}),
	}, m.opts.serverOpts...)

	node := &meshNode{
		rank:  rank,
		mesh:  m,
		lis:   lis,
		srv:   grpc.NewServer(serverOpts...),
		inbox: make(map[link]chan matrix.Block),
	}
	node.srv.RegisterService(&meshServiceDesc, node)
	m.serving.Go(func() error {
		if err := node.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("rank %d serve: %w", rank, err)
		}

		return nil
	})

	return node, nil
}

func (m *GRPCMesh) dial(rank int) (*grpc.ClientConn, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(m.opts.maxMsg),
			grpc.MaxCallSendMsgSize(m.opts.maxMsg),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                m.opts.keepalive,
			Timeout:             m.opts.kaTimeout,
			PermitWithoutStream: true,
		}),
	}

	target := m.nodes[rank].lis.Addr().String()
	if m.opts.dial != nil {
		target = fmt.Sprintf("passthrough:///rank-%d", rank)
		dialer := m.opts.dial
		dialOpts = append(dialOpts, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return dialer(ctx, rank)
		}))
	}
	dialOpts = append(dialOpts, m.opts.dialOpts...)

	return grpc.NewClient(target, dialOpts...)
}

// Size returns the number of ranks.
func (m *GRPCMesh) Size() int { return m.size }

// Addr returns the listen address of rank, e.g. for logs.
func (m *GRPCMesh) Addr(rank int) (net.Addr, error) {
	if rank < 0 || rank >= m.size {
		return nil, ErrUnknownPeer
	}

	return m.nodes[rank].lis.Addr(), nil
}

// Endpoint returns the Transport of rank.
func (m *GRPCMesh) Endpoint(rank int) (Transport, error) {
	if rank < 0 || rank >= m.size {
		return nil, ErrUnknownPeer
	}

	return &grpcEndpoint{mesh: m, rank: rank}, nil
}

// Close stops every server and client connection. Idempotent.
// Blocked Send/Receive calls return ErrClosed.
func (m *GRPCMesh) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		var errs []error
		for _, cc := range m.conns {
			if cc != nil {
				errs = append(errs, cc.Close())
			}
		}
		for _, n := range m.nodes {
			if n != nil {
				n.srv.Stop()
			}
		}
		errs = append(errs, m.serving.Wait())
		m.closeErr = errors.Join(errs...)
		klog.V(1).InfoS("grpc mesh closed", "ranks", m.size)
	})

	return m.closeErr
}

func (m *GRPCMesh) closed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// meshNode is the server side of one rank.
type meshNode struct {
	rank int
	mesh *GRPCMesh
	lis  net.Listener
	srv  *grpc.Server

	mu    sync.Mutex
	inbox map[link]chan matrix.Block
}

// mailbox returns (creating on first use) the queue for blocks from `from`.
func (n *meshNode) mailbox(from int, tag Tag) chan matrix.Block {
	n.mu.Lock()
	defer n.mu.Unlock()

	l := link{from: from, to: n.rank, tag: tag}
	ch, ok := n.inbox[l]
	if !ok {
		ch = make(chan matrix.Block, n.mesh.opts.depth)
		n.inbox[l] = ch
	}

	return ch
}

func (n *meshNode) deliver(ctx context.Context, e *envelope) (*ack, error) {
	if e.To != n.rank {
		return nil, status.Errorf(codes.InvalidArgument, "block for rank %d delivered to rank %d", e.To, n.rank)
	}
	if err := validatePeer(n.rank, e.From, n.mesh.size); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "sender %d: %v", e.From, err)
	}
	if n.mesh.opts.logPerBlock {
		klog.V(4).InfoS("deliver", "rank", n.rank, "from", e.From, "tag", e.Tag, "seq", e.Seq, "size", e.Block.Size)
	}

	select {
	case n.mailbox(e.From, e.Tag) <- e.Block:
		return &ack{}, nil
	case <-n.mesh.done:
		return nil, status.Error(codes.Unavailable, ErrClosed.Error())
	case <-ctx.Done():
		return nil, status.FromContextError(ctx.Err()).Err()
	}
}

// grpcEndpoint is the client side of one rank.
type grpcEndpoint struct {
	mesh *GRPCMesh
	rank int
	seq  atomic.Uint64
}

func (e *grpcEndpoint) Rank() int { return e.rank }

func (e *grpcEndpoint) Size() int { return e.mesh.size }

func (e *grpcEndpoint) Send(ctx context.Context, to int, tag Tag, b matrix.Block) error {
	if err := validatePeer(e.rank, to, e.mesh.size); err != nil {
		return transportErrorf("Send", e.rank, to, tag, err)
	}
	if err := validatePayload(b); err != nil {
		return transportErrorf("Send", e.rank, to, tag, err)
	}
	if e.mesh.closed() {
		return transportErrorf("Send", e.rank, to, tag, ErrClosed)
	}

	env := &envelope{From: e.rank, To: to, Tag: tag, Seq: e.seq.Add(1), Block: b}
	err := e.mesh.conns[to].Invoke(ctx, deliverMethod, env, &ack{}, grpc.ForceCodec(blockCodec{}))
	if err != nil {
		return transportErrorf("Send", e.rank, to, tag, e.mapError(ctx, err))
	}

	return nil
}

func (e *grpcEndpoint) Receive(ctx context.Context, from int, tag Tag) (matrix.Block, error) {
	if err := validatePeer(e.rank, from, e.mesh.size); err != nil {
		return matrix.Block{}, transportErrorf("Receive", e.rank, from, tag, err)
	}

	select {
	case b := <-e.mesh.nodes[e.rank].mailbox(from, tag):
		return b, nil
	case <-e.mesh.done:
		return matrix.Block{}, transportErrorf("Receive", e.rank, from, tag, ErrClosed)
	case <-ctx.Done():
		return matrix.Block{}, transportErrorf("Receive", e.rank, from, tag, ctx.Err())
	}
}

// mapError turns RPC failures into the package's sentinel errors where one fits.
func (e *grpcEndpoint) mapError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if e.mesh.closed() {
		return ErrClosed
	}
	switch status.Code(err) {
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrUnknownPeer, status.Convert(err).Message())
	case codes.Internal:
		return fmt.Errorf("%w: %s", ErrCodec, status.Convert(err).Message())
	default:
		return err
	}
}
