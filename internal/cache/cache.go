package cache

// 缓存索引：只维护元数据，不持有对象字节
import (
	"fmt"
	"strings"
	"sync"

	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jmgilman/go/errors"

	"github.com/Crystal-SDS/filter-samples/internal/core/lfu"
	"github.com/Crystal-SDS/filter-samples/internal/core/lru"
	"github.com/Crystal-SDS/filter-samples/internal/core/policy"
)

// 支持的操作
const (
	OpPut = "PUT"
	OpGet = "GET"
)

// Result 是一次 Access 的结果
// PUT: Evicted 是需要从缓存存储中删除的对象（可能为空，但不会是 nil）
// PUT: Updated 为 true 表示对象已经在索引中，这次只是更新
// GET: Found 为 true 时 ObjectID 是要从缓存存储读取的对象
type Result struct {
	Evicted  []string
	ObjectID string
	Found    bool
	Updated  bool
}

// Index 是一个按容量限制、带可插拔淘汰策略的缓存索引
// 所有操作都在同一把互斥锁内完成，锁内没有任何 I/O
type Index struct {
	mu          sync.Mutex
	descriptors map[string]*policy.Descriptor // ObjectID -> 描述符，O(1) 查找
	sorted      *rbt.Tree                     // 按淘汰顺序排序的描述符，最右侧是下一个受害者
	kind        policy.Kind
	capacity    int64 // 构造后不可变
	size        int64 // 已准入对象的 Size 之和
	clock       uint64
	stats       counters
	logger      log.Logger
}

type counters struct {
	getHits   uint64
	putHits   uint64
	misses    uint64
	evictions uint64
	reads     uint64
	writes    uint64
}

// New 创建一个缓存索引
// capacity 必须大于 0；无法识别的策略回退到 LRU 并打印警告，不会返回错误
func New(capacity int64, policyType string, logger log.Logger) (*Index, error) {
	if capacity <= 0 {
		return nil, errors.Newf(errors.CodeInvalidConfig, "cache capacity must be greater than 0, got %d", capacity)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	kind, ok := policy.ParseKind(policyType)
	if !ok {
		level.Warn(logger).Log("msg", "incorrect eviction policy, going to default", "policy", policyType, "default", policy.LRU)
	}

	return &Index{
		descriptors: make(map[string]*policy.Descriptor),
		sorted:      rbt.NewWith(comparatorFor(kind)),
		kind:        kind,
		capacity:    capacity,
		logger:      logger,
	}, nil
}

// comparatorFor 工厂方法：根据策略类型返回对应的比较器
func comparatorFor(kind policy.Kind) func(a, b interface{}) int {
	var cmp policy.Comparator
	switch kind {
	case policy.LFU:
		cmp = lfu.Compare
	default:
		cmp = lru.Compare
	}
	return func(a, b interface{}) int {
		return cmp(a.(*policy.Descriptor), b.(*policy.Descriptor))
	}
}

// Access 是索引唯一的入口（并发安全）
// 不支持的操作返回 INVALID_INPUT 错误，并且不修改任何状态
func (c *Index) Access(op, objectID string, size int64) (Result, error) {
	switch op {
	case OpPut:
		if size < 0 {
			return Result{}, errors.Newf(errors.CodeInvalidInput, "negative object size %d for %q", size, objectID)
		}
		evicted, updated := c.put(objectID, size)
		return Result{Evicted: evicted, Updated: updated}, nil
	case OpGet:
		id, ok := c.Get(objectID)
		return Result{Evicted: []string{}, ObjectID: id, Found: ok}, nil
	default:
		level.Error(c.logger).Log("msg", "unsupported cache operation", "op", op, "object", objectID)
		return Result{}, errors.Newf(errors.CodeInvalidInput, "unsupported cache operation %q", op)
	}
}

// Put 记录一次写入，返回为腾出空间而被淘汰的对象
// 已存在的对象只更新统计，占用的字节数不变
func (c *Index) Put(objectID string, size int64) []string {
	evicted, _ := c.put(objectID, size)
	return evicted
}

// put 在同一次加锁内判断对象是否已存在
func (c *Index) put(objectID string, size int64) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.writes++
	evicted := []string{}

	d, exist := c.descriptors[objectID]
	if !exist && c.size+size >= c.capacity {
		// 逐个弹出队尾直到有足够空间；单个对象比容量还大时会清空索引后仍然准入
		for c.size+size >= c.capacity && c.sorted.Size() > 0 {
			victim := c.sorted.Right().Key.(*policy.Descriptor)
			c.sorted.Remove(victim)
			delete(c.descriptors, victim.ObjectID)
			c.size -= victim.Size
			c.stats.evictions++
			evicted = append(evicted, victim.ObjectID)
		}
		if c.size+size > c.capacity {
			level.Warn(c.logger).Log("msg", "object larger than cache capacity admitted", "object", objectID, "size", size, "capacity", c.capacity)
		}
	}

	if exist {
		c.touch(d, d.PutHit)
		c.stats.putHits++
	} else {
		d = policy.NewDescriptor(objectID, size, c.tick())
		c.descriptors[objectID] = d
		c.sorted.Put(d, struct{}{})
		c.size += size
	}

	if len(evicted) > 0 {
		level.Debug(c.logger).Log("msg", "evicted objects", "object", objectID, "evicted", strings.Join(evicted, ","))
	}
	return evicted, exist
}

// Get 记录一次读取，命中时返回要读取的对象
// 未命中不会自动填充，由调用方随后 Put
func (c *Index) Get(objectID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.reads++
	d, exist := c.descriptors[objectID]
	if !exist {
		c.stats.misses++
		return "", false
	}
	c.touch(d, d.GetHit)
	c.stats.getHits++
	return d.ObjectID, true
}

// touch 先从有序结构中移除，再修改排序键，最后重新插入
// 描述符在树中时修改排序键会破坏树的有序性
func (c *Index) touch(d *policy.Descriptor, hit func(now uint64)) {
	c.sorted.Remove(d)
	hit(c.tick())
	c.sorted.Put(d, struct{}{})
}

// tick 逻辑时钟，保证每次访问的时间戳严格递增
func (c *Index) tick() uint64 {
	c.clock++
	return c.clock
}

// Contains 判断对象是否已被准入（不计入统计）
func (c *Index) Contains(objectID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.descriptors[objectID]
	return ok
}

// Policy 返回实际生效的淘汰策略
func (c *Index) Policy() policy.Kind {
	return c.kind
}

// Capacity 返回构造时设定的容量
func (c *Index) Capacity() int64 {
	return c.capacity
}

// Stats 返回当前统计信息的快照
func (c *Index) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsLocked()
}

func (c *Index) statsLocked() Stats {
	return Stats{
		GetHits:   c.stats.getHits,
		PutHits:   c.stats.putHits,
		Misses:    c.stats.misses,
		Evictions: c.stats.evictions,
		Reads:     c.stats.reads,
		Writes:    c.stats.writes,
		Bytes:     c.size,
		Capacity:  c.capacity,
		Entries:   len(c.descriptors),
		Policy:    c.kind,
	}
}

// Entries 按淘汰顺序返回所有描述符的副本，最后一个是下一个受害者
func (c *Index) Entries() []policy.Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entriesLocked()
}

func (c *Index) entriesLocked() []policy.Descriptor {
	out := make([]policy.Descriptor, 0, c.sorted.Size())
	it := c.sorted.Iterator()
	for it.Next() {
		out = append(out, *it.Key().(*policy.Descriptor))
	}
	return out
}

// String 输出可读的统计信息和每个条目的状态，仅用于调试，不是稳定格式
func (c *Index) String() string {
	c.mu.Lock()
	stats := c.statsLocked()
	entries := c.entriesLocked()
	c.mu.Unlock()

	var b strings.Builder
	b.WriteString(stats.String())
	fmt.Fprintf(&b, "\nCACHE ELEMENTS \t %d\n", len(entries))
	for _, d := range entries {
		fmt.Fprintf(&b, "%s\t%d\t%d\t%d\t%d\t%d\n", d.ObjectID, d.GetHits, d.PutHits, d.Accesses, d.LastAccess, d.Size)
	}
	return b.String()
}
