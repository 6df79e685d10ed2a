package consistenthash

import (
	"slices"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Hash 哈希函数签名，默认为 xxhash64
type Hash func(data []byte) uint64

// Map 是带虚拟节点的一致性哈希环，用来决定对象归哪个节点处理
// 不是并发安全的，由调用方加锁（Server 在 SetPeers 时整体重建）
type Map struct {
	hash     Hash
	replicas int               // 每个真实节点的虚拟节点数
	keys     []uint64          // 有序的虚拟节点哈希值
	hashMap  map[uint64]string // 虚拟节点哈希值 -> 真实节点
}

// New 创建哈希环，fn 为 nil 时使用 xxhash
func New(replicas int, fn Hash) *Map {
	m := &Map{
		replicas: replicas,
		hash:     fn,
		hashMap:  make(map[uint64]string),
	}
	if m.hash == nil {
		m.hash = xxhash.Sum64
	}
	return m
}

// Add 把真实节点加入哈希环，虚拟节点名为 序号+节点名
func (m *Map) Add(nodes ...string) {
	for _, node := range nodes {
		for i := 0; i < m.replicas; i++ {
			hash := m.hash([]byte(strconv.Itoa(i) + node))
			m.keys = append(m.keys, hash)
			m.hashMap[hash] = node
		}
	}
	slices.Sort(m.keys)
}

// Get 返回负责 key 的节点，环为空时返回空串
func (m *Map) Get(key string) string {
	if len(m.keys) == 0 {
		return ""
	}

	hash := m.hash([]byte(key))
	// 第一个 >= hash 的虚拟节点，越过末尾时回到环首
	idx := sort.Search(len(m.keys), func(i int) bool {
		return m.keys[i] >= hash
	})
	return m.hashMap[m.keys[idx%len(m.keys)]]
}

// Nodes 返回环上所有真实节点（去重，按名字排序）
func (m *Map) Nodes() []string {
	seen := make(map[string]struct{}, len(m.hashMap))
	nodes := make([]string, 0)
	for _, n := range m.hashMap {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}

// IsEmpty 环上没有节点
func (m *Map) IsEmpty() bool {
	return len(m.keys) == 0
}
