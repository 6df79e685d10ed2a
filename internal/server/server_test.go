package server

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	pb "github.com/Crystal-SDS/filter-samples/api/storletpb"
	"github.com/Crystal-SDS/filter-samples/internal/cache"
	"github.com/Crystal-SDS/filter-samples/internal/consistenthash"
	"github.com/Crystal-SDS/filter-samples/internal/node"
	"github.com/Crystal-SDS/filter-samples/internal/storlet"
	"github.com/Crystal-SDS/filter-samples/internal/store"
)

// ---------------------------------------------------------------------
// 1. 辅助工具
// ---------------------------------------------------------------------

// newTestNode 创建一个带 ssdcache storlet 的节点，所有节点共享同一个后端
func newTestNode(t *testing.T, self string, backend store.Store) *node.Node {
	t.Helper()
	idx, err := cache.New(1<<20, "LRU", nil)
	require.NoError(t, err)

	n := node.New(self, nil)
	require.NoError(t, n.Register(storlet.NewSSDCache(idx, store.NewMemory(), backend)))
	return n
}

// startServer 在随机端口上启动 gRPC 服务，测试结束时关闭
func startServer(t *testing.T, backend store.Store) (*Server, *node.Node) {
	t.Helper()
	lis, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)

	addr := lis.Addr().String()
	n := newTestNode(t, addr, backend)
	s := NewServer(addr, n, nil)
	n.RegisterPeers(s)

	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("Server stopped: %v", err)
		}
	}()
	t.Cleanup(func() { _ = s.Close() })
	return s, n
}

func dial(t *testing.T, addr string) pb.StorletClient {
	t.Helper()
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return pb.NewStorletClient(conn)
}

// ownedBy 找一个归属 owner 的对象 ID
func ownedBy(t *testing.T, owner string, peers ...string) string {
	t.Helper()
	ring := consistenthash.New(defaultReplicas, nil)
	ring.Add(peers...)
	for i := 0; i < 10000; i++ {
		id := fmt.Sprintf("container/object-%d", i)
		if ring.Get(id) == owner {
			return id
		}
	}
	t.Fatalf("no object owned by %s", owner)
	return ""
}

// ---------------------------------------------------------------------
// 2. 单元测试
// ---------------------------------------------------------------------

// TestPickPeer 选中自己时返回 false，选中远程节点时返回对应的客户端
func TestPickPeer(t *testing.T) {
	s := NewServer("localhost:8000", newTestNode(t, "localhost:8000", store.NewMemory()), nil)
	peers := []string{"localhost:8000", "localhost:8001", "localhost:8002"}
	s.SetPeers(peers...)

	local := ownedBy(t, "localhost:8000", peers...)
	_, ok := s.PickPeer(local)
	assert.False(t, ok)

	remote := ownedBy(t, "localhost:8002", peers...)
	peer, ok := s.PickPeer(remote)
	require.True(t, ok)
	c, isClient := peer.(*grpcClient)
	require.True(t, isClient)
	assert.Equal(t, "localhost:8002", c.addr)
}

func TestPickPeerWithoutPeers(t *testing.T) {
	s := NewServer("localhost:8000", newTestNode(t, "localhost:8000", store.NewMemory()), nil)
	_, ok := s.PickPeer("anything")
	assert.False(t, ok)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		code errors.ErrorCode
		want codes.Code
	}{
		{errors.CodeInvalidInput, codes.InvalidArgument},
		{errors.CodeNotFound, codes.NotFound},
		{errors.CodeUnavailable, codes.Unavailable},
		{errors.CodeInternal, codes.Internal},
	}
	for _, tt := range tests {
		err := toStatus(errors.New(tt.code, "boom"))
		assert.Equal(t, tt.want, status.Code(err), string(tt.code))
	}

	assert.Equal(t, errors.CodeNotFound, errors.GetCode(fromStatus(status.Error(codes.NotFound, "x"), "peer")))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(fromStatus(status.Error(codes.InvalidArgument, "x"), "peer")))
	assert.Equal(t, errors.CodeNetwork, errors.GetCode(fromStatus(status.Error(codes.Unavailable, "x"), "peer")))
	assert.Equal(t, errors.CodeNetwork, errors.GetCode(fromStatus(status.Error(codes.DeadlineExceeded, "x"), "peer")))
}

// TestServerInvokeDirect 直接调用 Server.Invoke，不走网络
func TestServerInvokeDirect(t *testing.T) {
	n := newTestNode(t, "localhost:9999", store.NewMemory())
	s := NewServer("localhost:9999", n, nil)
	ctx := context.Background()

	_, err := s.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpPut, ObjectId: "Tom", Data: []byte("630")})
	require.NoError(t, err)

	resp, err := s.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpGet, ObjectId: "Tom"})
	require.NoError(t, err)
	assert.Equal(t, "630", string(resp.Data))
	assert.True(t, resp.Hit)

	_, err = s.Invoke(ctx, &pb.InvokeRequest{Storlet: "unknown", Op: storlet.OpGet, ObjectId: "Tom"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = s.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: "DELETE", ObjectId: "Tom"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

// ---------------------------------------------------------------------
// 3. 集成测试
// ---------------------------------------------------------------------

// TestGRPCIntegration 启动真实的 gRPC 服务端，通过客户端调用
func TestGRPCIntegration(t *testing.T) {
	s, _ := startServer(t, store.NewMemory())
	client := dial(t, s.Addr())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	put, err := client.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpPut, ObjectId: "Jack", Data: []byte("589")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), put.Bytes)
	assert.Equal(t, s.Addr(), put.Node)

	get, err := client.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpGet, ObjectId: "Jack"})
	require.NoError(t, err)
	assert.Equal(t, "589", string(get.Data))
	assert.True(t, get.Hit)

	stats, err := client.Stats(ctx, &pb.StatsRequest{Storlet: storlet.SSDCacheName})
	require.NoError(t, err)
	assert.Contains(t, stats.GetDump(), "CACHE GET HITS: 1")

	_, err = client.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpGet, ObjectId: "nobody"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

// 对象由归属节点处理，另一个节点只负责转发
func TestForwardToOwner(t *testing.T) {
	backend := store.NewMemory()
	a, nodeA := startServer(t, backend)
	b, nodeB := startServer(t, backend)
	peers := []string{a.Addr(), b.Addr()}
	a.SetPeers(peers...)
	b.SetPeers(peers...)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := ownedBy(t, b.Addr(), peers...)
	resp, err := nodeA.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpPut, ObjectId: id, Data: []byte("owned by b")})
	require.NoError(t, err)
	assert.Equal(t, b.Addr(), resp.Node)

	dumpA, err := nodeA.Stats(storlet.SSDCacheName)
	require.NoError(t, err)
	assert.Contains(t, dumpA, "CACHE ELEMENTS \t 0")

	dumpB, err := nodeB.Stats(storlet.SSDCacheName)
	require.NoError(t, err)
	assert.Contains(t, dumpB, "CACHE ELEMENTS \t 1")

	resp, err = nodeA.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpGet, ObjectId: id})
	require.NoError(t, err)
	assert.True(t, resp.Hit)
	assert.Equal(t, "owned by b", string(resp.Data))
}

// 归属节点不可达时在本地处理
func TestForwardFallbackWhenPeerDown(t *testing.T) {
	dead, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	deadAddr := dead.Addr().String()
	require.NoError(t, dead.Close())

	a, nodeA := startServer(t, store.NewMemory())
	peers := []string{a.Addr(), deadAddr}
	a.SetPeers(peers...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id := ownedBy(t, deadAddr, peers...)
	resp, err := nodeA.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpPut, ObjectId: id, Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, a.Addr(), resp.Node)
}
