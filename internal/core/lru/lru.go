package lru

import "github.com/Crystal-SDS/filter-samples/internal/core/policy"

// Compare 是 LRU 淘汰顺序
// 最久未访问的对象排在最后（最先被淘汰）
// 时间戳相同时，访问次数更少的排在后面
func Compare(a, b *policy.Descriptor) int {
	if a.Equal(b) {
		return 0
	}
	switch {
	case a.LastAccess < b.LastAccess:
		return 1
	case a.LastAccess > b.LastAccess:
		return -1
	}
	switch {
	case a.Accesses < b.Accesses:
		return 1
	case a.Accesses > b.Accesses:
		return -1
	}
	return policy.TieBreak(a, b)
}

var _ policy.Comparator = Compare
