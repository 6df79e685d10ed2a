package cache

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-kit/log"
	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Crystal-SDS/filter-samples/internal/core/policy"
)

func newIndex(t *testing.T, capacity int64, policyType string) *Index {
	t.Helper()
	c, err := New(capacity, policyType, nil)
	require.NoError(t, err)
	return c
}

// checkInvariants map 和有序结构的成员一致，size 等于所有描述符大小之和
func checkInvariants(t *testing.T, c *Index) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	require.Equal(t, len(c.descriptors), c.sorted.Size(), "unequal length in cache data structures")

	var sum int64
	for id, d := range c.descriptors {
		require.Equal(t, id, d.ObjectID)
		_, found := c.sorted.Get(d)
		require.True(t, found, "descriptor %s missing from sorted set", id)
		sum += d.Size
	}
	require.Equal(t, sum, c.size)
}

// 容量 100，LRU：x 被 y 挤出
func TestScenarioLRUReplace(t *testing.T) {
	c := newIndex(t, 100, "LRU")

	evicted := c.Put("x", 60)
	assert.Empty(t, evicted)
	assert.NotNil(t, evicted)
	assert.Equal(t, int64(60), c.Stats().Bytes)

	evicted = c.Put("y", 60)
	assert.Equal(t, []string{"x"}, evicted)
	assert.Equal(t, int64(60), c.Stats().Bytes)

	id, ok := c.Get("y")
	assert.True(t, ok)
	assert.Equal(t, "y", id)

	_, ok = c.Get("x")
	assert.False(t, ok)

	checkInvariants(t, c)
}

// 容量 50，单个对象 60：没有可淘汰的对象，依然准入
func TestScenarioOversizedObjectAdmitted(t *testing.T) {
	c := newIndex(t, 50, "LRU")

	evicted := c.Put("a", 60)
	assert.Empty(t, evicted)
	assert.Equal(t, int64(60), c.Stats().Bytes)
	assert.True(t, c.Contains("a"))

	// 再来一个新对象，会把 a 淘汰掉
	evicted = c.Put("b", 10)
	assert.Equal(t, []string{"a"}, evicted)
	assert.Equal(t, int64(10), c.Stats().Bytes)

	checkInvariants(t, c)
}

// 大于容量的对象会清空整个索引，但不会死循环
func TestOversizedObjectDrainsIndex(t *testing.T) {
	c := newIndex(t, 100, "LFU")
	c.Put("a", 30)
	c.Put("b", 30)
	c.Put("c", 30)

	evicted := c.Put("huge", 500)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, evicted)
	assert.Equal(t, int64(500), c.Stats().Bytes)
	assert.Equal(t, 1, c.Stats().Entries)

	checkInvariants(t, c)
}

// 占用 + 新对象 恰好等于容量时也会触发淘汰
func TestAdmissionIsNonStrict(t *testing.T) {
	c := newIndex(t, 100, "LRU")
	c.Put("a", 40)

	evicted := c.Put("b", 60)
	assert.Equal(t, []string{"a"}, evicted)
	assert.Equal(t, int64(60), c.Stats().Bytes)

	// 没有达到容量则不淘汰
	evicted = c.Put("c", 39)
	assert.Empty(t, evicted)
	assert.Equal(t, int64(99), c.Stats().Bytes)
}

// A、B、C 依次准入，访问 A，之后淘汰一个时应该是 B
func TestLRUEvictsLeastRecentlyTouched(t *testing.T) {
	c := newIndex(t, 100, "LRU")
	c.Put("A", 30)
	c.Put("B", 30)
	c.Put("C", 30)

	_, ok := c.Get("A")
	require.True(t, ok)

	evicted := c.Put("D", 10)
	assert.Equal(t, []string{"B"}, evicted)
	assert.True(t, c.Contains("A"))
	assert.True(t, c.Contains("C"))
	assert.True(t, c.Contains("D"))

	checkInvariants(t, c)
}

// A(2 次 GET)、B(0 次)、C(1 次)：先淘汰 B
func TestLFUEvictsLeastFrequentlyRead(t *testing.T) {
	c := newIndex(t, 100, "LFU")
	c.Put("A", 30)
	c.Put("B", 30)
	c.Put("C", 30)

	c.Get("A")
	c.Get("A")
	c.Get("C")
	// PUT 更新不算 LFU 的“使用”
	c.Put("B", 30)

	evicted := c.Put("D", 10)
	assert.Equal(t, []string{"B"}, evicted)

	// 再挤出一个：C(1) 比 A(2) 先走，D(0) 最先
	evicted = c.Put("E", 40)
	assert.Equal(t, []string{"D", "C"}, evicted)

	checkInvariants(t, c)
}

// 已存在对象的 PUT 不改变占用、不淘汰、put_hits 加一
func TestUpdatePutIsIdempotentForSize(t *testing.T) {
	c := newIndex(t, 100, "LRU")
	c.Put("a", 50)
	c.Put("b", 49)

	before := c.Stats()
	evicted := c.Put("a", 50)
	after := c.Stats()

	assert.Empty(t, evicted)
	assert.Equal(t, before.Bytes, after.Bytes)
	assert.Equal(t, before.PutHits+1, after.PutHits)
	assert.Equal(t, before.Evictions, after.Evictions)

	// 更新时传入不同大小，仍然只按首次准入的大小计费
	c.Put("a", 90)
	assert.Equal(t, int64(99), c.Stats().Bytes)

	checkInvariants(t, c)
}

// 从未准入或已淘汰的对象 GET 都是 miss
func TestGetMiss(t *testing.T) {
	c := newIndex(t, 10, "LRU")

	_, ok := c.Get("never")
	assert.False(t, ok)

	c.Put("a", 6)
	c.Put("b", 6) // 淘汰 a
	bytesBefore := c.Stats().Bytes

	_, ok = c.Get("a")
	assert.False(t, ok)

	st := c.Stats()
	assert.Equal(t, uint64(2), st.Misses)
	assert.Equal(t, bytesBefore, st.Bytes)
}

func TestAccess(t *testing.T) {
	c := newIndex(t, 100, "LRU")

	res, err := c.Access(OpPut, "a", 10)
	require.NoError(t, err)
	assert.NotNil(t, res.Evicted)
	assert.Empty(t, res.Evicted)
	assert.False(t, res.Updated)

	// 再次写入同一个对象是更新
	res, err = c.Access(OpPut, "a", 10)
	require.NoError(t, err)
	assert.True(t, res.Updated)

	res, err = c.Access(OpGet, "a", 0)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "a", res.ObjectID)

	res, err = c.Access(OpGet, "b", 0)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.ObjectID)
}

// 并发写入同一个对象时只有一次是新准入
func TestAccessUpdatedUnderConcurrency(t *testing.T) {
	c := newIndex(t, 1000, "LFU")

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Access(OpPut, "shared", 10)
			if err == nil && !res.Updated {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), admitted.Load())
	assert.Equal(t, uint64(31), c.Stats().PutHits)
}

// 不支持的操作返回错误并且不修改状态
func TestAccessUnsupportedOperation(t *testing.T) {
	c := newIndex(t, 100, "LRU")
	c.Put("a", 10)
	before := c.Stats()

	_, err := c.Access("DELETE", "a", 0)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = c.Access(OpPut, "b", -1)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	assert.Equal(t, before, c.Stats())
}

// 无法识别的策略回退到 LRU，并打印警告
func TestInvalidPolicyFallsBackToLRU(t *testing.T) {
	var buf bytes.Buffer
	c, err := New(100, "fifo", log.NewLogfmtLogger(&buf))
	require.NoError(t, err)

	assert.Equal(t, policy.LRU, c.Policy())
	assert.Contains(t, buf.String(), "level=warn")
	assert.Contains(t, buf.String(), "policy=fifo")
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	_, err := New(0, "LRU", nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

// Entries 的最后一个元素就是下一个受害者
func TestEntriesOrder(t *testing.T) {
	c := newIndex(t, 1000, "LRU")
	c.Put("a", 1)
	c.Put("b", 1)
	c.Put("c", 1)
	c.Get("a")

	entries := c.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].ObjectID)
	assert.Equal(t, "b", entries[2].ObjectID)
}

func TestString(t *testing.T) {
	c := newIndex(t, 100, "LFU")
	c.Put("a", 10)
	c.Get("a")
	c.Get("z")

	dump := c.String()
	assert.Contains(t, dump, "CACHE POLICY: LFU")
	assert.Contains(t, dump, "CACHE GET HITS: 1")
	assert.Contains(t, dump, "CACHE MISSES: 1")
	assert.Contains(t, dump, "CACHE SIZE: 10/100")
	assert.Contains(t, dump, "CACHE ELEMENTS \t 1")
	assert.Contains(t, dump, "a\t1\t0\t1\t")
}

// 随机操作序列后不变量依然成立
func TestRandomOperationsKeepInvariants(t *testing.T) {
	for _, p := range []string{"LRU", "LFU"} {
		t.Run(p, func(t *testing.T) {
			const capacity = 1000
			c := newIndex(t, capacity, p)
			r := rand.New(rand.NewSource(42))

			for i := 0; i < 5000; i++ {
				id := fmt.Sprintf("obj-%d", r.Intn(60))
				if r.Float32() < 0.5 {
					size := int64(r.Intn(capacity))
					c.Put(id, size)
					if size < capacity {
						assert.LessOrEqual(t, c.Stats().Bytes, int64(capacity))
					}
				} else {
					c.Get(id)
				}
			}
			checkInvariants(t, c)

			st := c.Stats()
			assert.Equal(t, st.Reads, st.GetHits+st.Misses)
		})
	}
}

// 并发访问同一个索引
func TestConcurrentAccess(t *testing.T) {
	c := newIndex(t, 4096, "LFU")

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(w)))
			for i := 0; i < 1000; i++ {
				id := fmt.Sprintf("k%d", r.Intn(100))
				if i%3 == 0 {
					c.Get(id)
				} else {
					_, _ = c.Access(OpPut, id, int64(r.Intn(256)))
				}
			}
		}(w)
	}
	wg.Wait()

	checkInvariants(t, c)
	st := c.Stats()
	assert.Equal(t, uint64(workers*1000), st.Reads+st.Writes)
}
