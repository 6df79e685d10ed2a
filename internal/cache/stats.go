package cache

import (
	"fmt"

	"github.com/Crystal-SDS/filter-samples/internal/core/policy"
)

// Stats 是索引累计计数器的快照，只用于观测
type Stats struct {
	GetHits   uint64
	PutHits   uint64
	Misses    uint64
	Evictions uint64
	Reads     uint64
	Writes    uint64
	Bytes     int64 // 当前占用
	Capacity  int64
	Entries   int
	Policy    policy.Kind
}

// HitRatio GET 命中率，没有读请求时为 0
func (s Stats) HitRatio() float64 {
	if s.Reads == 0 {
		return 0
	}
	return float64(s.GetHits) / float64(s.Reads)
}

func (s Stats) String() string {
	return fmt.Sprintf("CACHE POLICY: %s\n"+
		"CACHE GET HITS: %d\n"+
		"CACHE PUT HITS: %d\n"+
		"CACHE MISSES: %d\n"+
		"CACHE EVICTIONS: %d\n"+
		"CACHE READS: %d\n"+
		"CACHE WRITES: %d\n"+
		"CACHE SIZE: %d/%d",
		s.Policy, s.GetHits, s.PutHits, s.Misses, s.Evictions, s.Reads, s.Writes, s.Bytes, s.Capacity)
}
