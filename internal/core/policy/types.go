package policy

import "strings"

// Descriptor 是缓存中一个对象的元数据（不保存字节本身）
// 相等性只看 ObjectID，其余字段都可以原地修改
type Descriptor struct {
	ObjectID   string // 对象标识，唯一键
	Size       int64  // 首次准入时计入容量的字节数
	LastAccess uint64 // 最近一次访问的单调时间戳（由索引的逻辑时钟生成）
	GetHits    uint64 // GET 命中次数
	PutHits    uint64 // PUT 更新次数
	Accesses   uint64 // 总访问次数
}

// NewDescriptor 创建一个新准入对象的描述符
func NewDescriptor(objectID string, size int64, now uint64) *Descriptor {
	return &Descriptor{
		ObjectID:   objectID,
		Size:       size,
		LastAccess: now,
	}
}

// GetHit 记录一次 GET 命中
func (d *Descriptor) GetHit(now uint64) {
	d.GetHits++
	d.hit(now)
}

// PutHit 记录一次对已存在对象的 PUT
func (d *Descriptor) PutHit(now uint64) {
	d.PutHits++
	d.hit(now)
}

func (d *Descriptor) hit(now uint64) {
	d.LastAccess = now
	d.Accesses++
}

// Equal 两个描述符表示同一个对象时相等
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.ObjectID == other.ObjectID
}

// Comparator 定义淘汰顺序
// 返回值 > 0 表示 a 排在 b 后面；有序结构的最后一个元素就是下一个被淘汰的对象
// 同一个 ObjectID 必须返回 0，不同 ObjectID 绝不能返回 0
type Comparator func(a, b *Descriptor) int

// Kind 淘汰策略名称
type Kind string

const (
	LRU Kind = "LRU"
	LFU Kind = "LFU"
)

// ParseKind 解析策略名称（不区分大小写）
// 第二个返回值为 false 表示无法识别，由调用方决定回退策略
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case LRU:
		return LRU, true
	case LFU:
		return LFU, true
	default:
		return LRU, false
	}
}

// TieBreak 在所有统计字段都相等时按 ObjectID 给出确定的顺序
func TieBreak(a, b *Descriptor) int {
	return strings.Compare(a.ObjectID, b.ObjectID)
}
