package cache

import (
	"fmt"
	"math/rand"
	"testing"
)

// 运行方式: go test -bench=. -benchmem ./internal/cache
func benchmarkAccess(b *testing.B, policyType string) {
	c, err := New(1<<20, policyType, nil)
	if err != nil {
		b.Fatal(err)
	}
	ids := make([]string, 4096)
	for i := range ids {
		ids[i] = fmt.Sprintf("bucket/object-%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := ids[rand.Intn(len(ids))]
		if rand.Intn(4) == 0 {
			c.Put(id, int64(1+rand.Intn(1024)))
		} else {
			c.Get(id)
		}
	}
}

func BenchmarkAccessLRU(b *testing.B) { benchmarkAccess(b, "LRU") }
func BenchmarkAccessLFU(b *testing.B) { benchmarkAccess(b, "LFU") }

func BenchmarkAccessParallel(b *testing.B) {
	c, err := New(1<<20, "LRU", nil)
	if err != nil {
		b.Fatal(err)
	}
	b.RunParallel(func(p *testing.PB) {
		r := rand.New(rand.NewSource(rand.Int63()))
		for p.Next() {
			id := fmt.Sprintf("o-%d", r.Intn(4096))
			if r.Intn(4) == 0 {
				c.Put(id, int64(1+r.Intn(1024)))
			} else {
				c.Get(id)
			}
		}
	})
}
