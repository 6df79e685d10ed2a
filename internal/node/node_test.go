package node

import (
	"context"
	"testing"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pb "github.com/Crystal-SDS/filter-samples/api/storletpb"
	"github.com/Crystal-SDS/filter-samples/internal/cache"
	"github.com/Crystal-SDS/filter-samples/internal/storlet"
	"github.com/Crystal-SDS/filter-samples/internal/store"
)

// fakePeer 模拟远程节点
type fakePeer struct {
	calls int
	last  *pb.InvokeRequest
	err   error
}

func (p *fakePeer) Invoke(_ context.Context, in *pb.InvokeRequest) (*pb.InvokeResponse, error) {
	p.calls++
	p.last = in
	if p.err != nil {
		return nil, p.err
	}
	return &pb.InvokeResponse{Op: in.Op, ObjectId: in.ObjectId, Node: "remote"}, nil
}

// fakePicker 所有对象都归远程节点
type fakePicker struct {
	peer *fakePeer
}

func (p *fakePicker) PickPeer(string) (PeerClient, bool) {
	return p.peer, true
}

func newTestNode(t *testing.T) *Node {
	t.Helper()
	idx, err := cache.New(1<<20, "LFU", nil)
	require.NoError(t, err)

	n := New("localhost:9001", nil)
	require.NoError(t, n.Register(storlet.NewSSDCache(idx, store.NewMemory(), store.NewMemory())))
	require.NoError(t, n.Register(storlet.NewPassthrough(store.NewMemory())))
	return n
}

// 本地缓存写入再读取
func TestInvokeLocally(t *testing.T) {
	n := newTestNode(t)
	ctx := context.Background()

	resp, err := n.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpPut, ObjectId: "o", Data: []byte("630")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Bytes)
	assert.Equal(t, "localhost:9001", resp.Node)
	assert.Empty(t, resp.Data)

	resp, err = n.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpGet, ObjectId: "o"})
	require.NoError(t, err)
	assert.True(t, resp.Hit)
	assert.Equal(t, "630", string(resp.Data))

	dump, err := n.Stats(storlet.SSDCacheName)
	require.NoError(t, err)
	assert.Contains(t, dump, "CACHE GET HITS: 1")

	assert.Equal(t, []string{storlet.PassthroughName, storlet.SSDCacheName}, n.Names())
}

func TestInvokeErrors(t *testing.T) {
	n := newTestNode(t)
	ctx := context.Background()

	_, err := n.Invoke(ctx, &pb.InvokeRequest{Storlet: "csv", Op: storlet.OpGet, ObjectId: "o"})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = n.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpGet})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = n.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: "POST", ObjectId: "o"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = n.Stats("csv")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestRegisterDuplicate(t *testing.T) {
	n := newTestNode(t)
	err := n.Register(storlet.NewPassthrough(store.NewMemory()))
	assert.Equal(t, errors.CodeAlreadyExists, errors.GetCode(err))
}

// 归属远程节点的对象被转发，并且带上转发标记
func TestInvokeForwardsToPeer(t *testing.T) {
	n := newTestNode(t)
	peer := &fakePeer{}
	n.RegisterPeers(&fakePicker{peer: peer})

	resp, err := n.Invoke(context.Background(), &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpGet, ObjectId: "o"})
	require.NoError(t, err)
	assert.Equal(t, "remote", resp.Node)
	assert.Equal(t, 1, peer.calls)
	assert.True(t, peer.last.Forwarded)
}

// 已转发的请求只在本地处理
func TestForwardedRequestStaysLocal(t *testing.T) {
	n := newTestNode(t)
	peer := &fakePeer{}
	n.RegisterPeers(&fakePicker{peer: peer})

	resp, err := n.Invoke(context.Background(), &pb.InvokeRequest{Storlet: storlet.PassthroughName, Op: storlet.OpPut, ObjectId: "o", Forwarded: true})
	require.NoError(t, err)
	assert.Equal(t, "localhost:9001", resp.Node)
	assert.Zero(t, peer.calls)
}

// 网络失败时退回本地处理，其他错误直接返回
func TestPeerFailure(t *testing.T) {
	n := newTestNode(t)
	peer := &fakePeer{err: errors.New(errors.CodeNetwork, "connection refused")}
	n.RegisterPeers(&fakePicker{peer: peer})
	ctx := context.Background()

	resp, err := n.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpPut, ObjectId: "o", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "localhost:9001", resp.Node)

	peer.err = errors.New(errors.CodeNotFound, "object not found")
	_, err = n.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpGet, ObjectId: "other"})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestRegisterPeersTwicePanics(t *testing.T) {
	n := newTestNode(t)
	n.RegisterPeers(&fakePicker{})
	assert.Panics(t, func() { n.RegisterPeers(&fakePicker{}) })
}

func TestClose(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.Close())

	_, err := n.Invoke(context.Background(), &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpGet, ObjectId: "o"})
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))
}
