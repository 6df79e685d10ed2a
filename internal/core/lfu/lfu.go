package lfu

import "github.com/Crystal-SDS/filter-samples/internal/core/policy"

// Compare 是 LFU 淘汰顺序
// GET 命中次数越少越靠后（最先被淘汰），只统计 GET，PUT 更新不算“使用”
// 命中次数相同时，最近访问时间更早的排在后面
func Compare(a, b *policy.Descriptor) int {
	if a.Equal(b) {
		return 0
	}
	switch {
	case a.GetHits < b.GetHits:
		return 1
	case a.GetHits > b.GetHits:
		return -1
	}
	switch {
	case a.LastAccess < b.LastAccess:
		return 1
	case a.LastAccess > b.LastAccess:
		return -1
	}
	return policy.TieBreak(a, b)
}

var _ policy.Comparator = Compare
