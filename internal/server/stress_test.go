package server

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pb "github.com/Crystal-SDS/filter-samples/api/storletpb"
	"github.com/Crystal-SDS/filter-samples/internal/storlet"
	"github.com/Crystal-SDS/filter-samples/internal/store"
)

// 多节点网络压测：每个客户端固定连一个节点，对象由归属节点处理
func TestStressMultiNodeNetwork(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	const (
		nodeCount    = 3
		clientCount  = 10
		requestCount = 100
		objectCount  = 50
	)

	backend := store.NewMemory()
	var servers []*Server
	var addrs []string
	for i := 0; i < nodeCount; i++ {
		s, _ := startServer(t, backend)
		servers = append(servers, s)
		addrs = append(addrs, s.Addr())
	}
	// 让所有节点互相感知
	for _, s := range servers {
		s.SetPeers(addrs...)
	}

	objects := make(map[string]string, objectCount)
	ids := make([]string, 0, objectCount)
	for i := 0; i < objectCount; i++ {
		id := fmt.Sprintf("bucket/object_%06d", i)
		objects[id] = fmt.Sprintf("value_%06d_%s", i, strings.Repeat("x", 100))
		ids = append(ids, id)
	}

	// 先由第一个节点写入全部对象
	seed := dial(t, addrs[0])
	for _, id := range ids {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := seed.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpPut, ObjectId: id, Data: []byte(objects[id])})
		cancel()
		require.NoError(t, err)
	}

	var (
		success int64
		failed  int64
		hits    int64
		wg      sync.WaitGroup
	)
	start := time.Now()
	for c := 0; c < clientCount; c++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			cli := dial(t, addrs[clientID%nodeCount])
			for i := 0; i < requestCount; i++ {
				id := ids[rand.Intn(len(ids))]
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				resp, err := cli.Invoke(ctx, &pb.InvokeRequest{Storlet: storlet.SSDCacheName, Op: storlet.OpGet, ObjectId: id})
				cancel()
				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				atomic.AddInt64(&success, 1)
				if resp.Hit {
					atomic.AddInt64(&hits, 1)
				}
				if string(resp.GetData()) != objects[id] {
					t.Errorf("[Client %d] %s 数据不一致", clientID, id)
				}
			}
		}(c)
	}
	wg.Wait()
	elapsed := time.Since(start)

	total := success + failed
	t.Logf("=== 多节点网络压测结果 ===")
	t.Logf("节点: %d, 客户端: %d, 每客户端请求: %d", nodeCount, clientCount, requestCount)
	t.Logf("总请求: %d, 成功: %d, 失败: %d, 命中: %d", total, success, failed, hits)
	t.Logf("QPS: %.2f, 总耗时: %v", float64(total)/elapsed.Seconds(), elapsed)

	assert.Zero(t, failed)
	// 容量足够，写入后的读取全部命中
	assert.Equal(t, success, hits)
}
