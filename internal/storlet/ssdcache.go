package storlet

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jmgilman/go/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Crystal-SDS/filter-samples/internal/cache"
	"github.com/Crystal-SDS/filter-samples/internal/metrics"
	"github.com/Crystal-SDS/filter-samples/internal/store"
)

// SSDCacheName 注册到节点上的名字
const SSDCacheName = "ssdcache"

// SSDCache 是写穿透的 SSD 缓存 storlet
// PUT 同时写入后端存储和缓存存储；GET 命中时从缓存存储读取，否则读后端
type SSDCache struct {
	index          *cache.Index
	cache          store.Store // 缓存对象内容（本地 SSD 目录）
	backend        store.Store // 对象的权威副本
	populateOnMiss bool
	loader         singleflight.Group // GET 未命中时合并对同一对象的回填
	objects        *objectLocks       // 同一对象的 PUT 与回填串行执行
	metrics        *metrics.Metrics
	logger         log.Logger
	closed         atomic.Bool
}

// SSDCacheOption 配置 SSDCache
type SSDCacheOption func(*SSDCache)

func WithLogger(logger log.Logger) SSDCacheOption {
	return func(s *SSDCache) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) SSDCacheOption {
	return func(s *SSDCache) { s.metrics = m }
}

// WithPopulateOnMiss GET 未命中时把对象回填进缓存
func WithPopulateOnMiss() SSDCacheOption {
	return func(s *SSDCache) { s.populateOnMiss = true }
}

// NewSSDCache 在服务启动时创建一次，关闭时调用 Close
func NewSSDCache(index *cache.Index, cacheStore, backend store.Store, opts ...SSDCacheOption) *SSDCache {
	s := &SSDCache{
		index:   index,
		cache:   cacheStore,
		backend: backend,
		objects: newObjectLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewNopLogger()
	}
	s.logger = log.With(s.logger, "storlet", SSDCacheName)
	if s.metrics == nil {
		s.metrics = metrics.NewMetrics(prometheus.NewRegistry())
	}
	return s
}

func (s *SSDCache) Name() string {
	return SSDCacheName
}

// Invoke 执行一次 PUT 或 GET
func (s *SSDCache) Invoke(ctx context.Context, inv *Invocation) (*Result, error) {
	if s.closed.Load() {
		return nil, errors.New(errors.CodeUnavailable, "ssdcache storlet is closed")
	}
	if err := validate(inv); err != nil {
		return nil, err
	}
	s.metrics.Invocations.WithLabelValues(SSDCacheName, inv.Op).Inc()

	var (
		res *Result
		err error
	)
	switch inv.Op {
	case OpPut:
		res, err = s.put(ctx, inv)
	case OpGet:
		res, err = s.get(ctx, inv)
	}
	s.metrics.Occupancy.Set(float64(s.index.Stats().Bytes))
	return res, err
}

// put 写穿透：输入流同时写往后端和缓存，缓存写失败不影响这次写入
func (s *SSDCache) put(ctx context.Context, inv *Invocation) (*Result, error) {
	id := inv.ObjectID
	unlock := s.objects.lock(id)
	defer unlock()

	src := inv.Input
	if inv.Output != nil {
		src = io.TeeReader(src, inv.Output)
	}
	pr, pw := io.Pipe()
	tee := io.TeeReader(src, pw)

	var (
		written  int64
		cacheErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.backend.Put(gctx, id, tee)
		// err 为 nil 时缓存侧读到 EOF
		pw.CloseWithError(err)
		written = n
		return err
	})
	g.Go(func() error {
		if _, err := s.cache.Put(gctx, id, pr); err != nil {
			cacheErr = err
			// 继续消费管道，否则后端写入会阻塞
			_, _ = io.Copy(io.Discard, pr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.metrics.Errors.WithLabelValues("backend_write").Inc()
		level.Error(s.logger).Log("msg", "write-through to backend failed", "object", id, "err", err)
		return nil, wrap(err, "write %q to backend", id)
	}
	s.metrics.Bytes.WithLabelValues(metrics.DirectionIn).Add(float64(written))

	if cacheErr != nil {
		s.metrics.Errors.WithLabelValues("cache_write").Inc()
		level.Warn(s.logger).Log("msg", "failed to write object to cache", "object", id, "err", cacheErr)
		// 旧版本的缓存文件不能再被读到
		if err := s.cache.Delete(ctx, id); err != nil {
			level.Warn(s.logger).Log("msg", "failed to drop stale cached object", "object", id, "err", err)
		}
		return &Result{Op: OpPut, ObjectID: id, Evicted: []string{}, Bytes: written}, nil
	}

	evicted, err := s.admit(ctx, id, written)
	if err != nil {
		return nil, err
	}
	return &Result{Op: OpPut, ObjectID: id, Evicted: evicted, Bytes: written}, nil
}

// admit 把已写入缓存存储的对象记入索引，并删除被淘汰对象的缓存文件
// 删除发生在索引调用返回之后，不持有索引锁
func (s *SSDCache) admit(ctx context.Context, id string, size int64) ([]string, error) {
	res, err := s.index.Access(cache.OpPut, id, size)
	if err != nil {
		return nil, err
	}
	result := metrics.ResultAdmit
	if res.Updated {
		result = metrics.ResultUpdate
	}
	s.metrics.CacheResults.WithLabelValues(OpPut, result).Inc()

	for _, victim := range res.Evicted {
		if err := s.cache.Delete(ctx, victim); err != nil {
			s.metrics.Errors.WithLabelValues("evict").Inc()
			level.Warn(s.logger).Log("msg", "failed to delete evicted object", "object", victim, "err", err)
		}
	}
	if len(res.Evicted) > 0 {
		s.metrics.Evictions.Add(float64(len(res.Evicted)))
		level.Debug(s.logger).Log("msg", "evicted objects from cache", "object", id, "count", len(res.Evicted))
	}
	return res.Evicted, nil
}

func (s *SSDCache) get(ctx context.Context, inv *Invocation) (*Result, error) {
	id := inv.ObjectID

	res, err := s.index.Access(cache.OpGet, id, 0)
	if err != nil {
		return nil, err
	}

	if res.Found {
		s.metrics.CacheResults.WithLabelValues(OpGet, metrics.ResultHit).Inc()
		n, err := s.copyFrom(ctx, s.cache, res.ObjectID, inv.Output)
		switch {
		case err == nil:
			return &Result{Op: OpGet, ObjectID: id, Hit: true, Evicted: []string{}, Bytes: n}, nil
		case store.IsNotFound(err):
			// 缓存文件丢失（例如写缓存失败），退回后端
			s.metrics.Errors.WithLabelValues("cache_read").Inc()
			level.Warn(s.logger).Log("msg", "cached object missing, reading from backend", "object", id)
		default:
			s.metrics.Errors.WithLabelValues("cache_read").Inc()
			return nil, wrap(err, "read %q from cache", id)
		}
	} else {
		s.metrics.CacheResults.WithLabelValues(OpGet, metrics.ResultMiss).Inc()
		if s.populateOnMiss {
			err := s.populate(ctx, id)
			switch {
			case err == nil:
				n, err := s.copyFrom(ctx, s.cache, id, inv.Output)
				if err == nil {
					return &Result{Op: OpGet, ObjectID: id, Evicted: []string{}, Bytes: n}, nil
				}
				// 回填之后又被并发的 PUT 淘汰时退回后端
				if !store.IsNotFound(err) {
					return nil, wrap(err, "read %q from cache", id)
				}
			case store.IsNotFound(err):
				return nil, wrap(err, "read %q from backend", id)
			default:
				s.metrics.Errors.WithLabelValues("populate").Inc()
				level.Warn(s.logger).Log("msg", "failed to populate cache", "object", id, "err", err)
			}
		}
	}

	n, err := s.copyFrom(ctx, s.backend, id, inv.Output)
	if err != nil {
		if !store.IsNotFound(err) {
			s.metrics.Errors.WithLabelValues("backend_read").Inc()
		}
		return nil, wrap(err, "read %q from backend", id)
	}
	return &Result{Op: OpGet, ObjectID: id, Evicted: []string{}, Bytes: n}, nil
}

// populate 从后端取回对象写入缓存，并发的未命中只会取一次
// 持有对象锁，期间到达的 PUT 要等回填结束后再写，回填不会覆盖更新的版本
func (s *SSDCache) populate(ctx context.Context, id string) error {
	_, err, _ := s.loader.Do(id, func() (interface{}, error) {
		unlock := s.objects.lock(id)
		defer unlock()
		// PUT 先拿到锁时已经把新版本写进缓存
		if s.index.Contains(id) {
			return nil, nil
		}
		rc, err := s.backend.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		n, err := s.cache.Put(ctx, id, rc)
		if err != nil {
			return nil, err
		}
		_, err = s.admit(ctx, id, n)
		return nil, err
	})
	return err
}

func (s *SSDCache) copyFrom(ctx context.Context, src store.Store, id string, w io.Writer) (int64, error) {
	rc, err := src.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	n, err := copyBuffer(w, rc)
	if err != nil {
		return n, errors.Wrapf(err, errors.CodeInternal, "stream %q", id)
	}
	s.metrics.Bytes.WithLabelValues(metrics.DirectionOut).Add(float64(n))
	return n, nil
}

// Index 返回底层的缓存索引
func (s *SSDCache) Index() *cache.Index {
	return s.index
}

// Close 之后的调用都会返回 SERVICE_UNAVAILABLE
func (s *SSDCache) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	st := s.index.Stats()
	level.Info(s.logger).Log("msg", "storlet closed", "entries", st.Entries, "bytes", st.Bytes, "hit_ratio", st.HitRatio())
	return nil
}

// String 返回缓存索引的调试输出
func (s *SSDCache) String() string {
	return s.index.String()
}

var _ Storlet = (*SSDCache)(nil)
