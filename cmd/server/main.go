package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Crystal-SDS/filter-samples/config"
	"github.com/Crystal-SDS/filter-samples/internal/cache"
	"github.com/Crystal-SDS/filter-samples/internal/discovery"
	"github.com/Crystal-SDS/filter-samples/internal/metrics"
	"github.com/Crystal-SDS/filter-samples/internal/node"
	"github.com/Crystal-SDS/filter-samples/internal/server"
	"github.com/Crystal-SDS/filter-samples/internal/storlet"
	"github.com/Crystal-SDS/filter-samples/internal/store"
)

// 租约 TTL (秒)
const leaseTTL = 10

func main() {
	var (
		configPath string
		port       int
	)
	flag.StringVar(&configPath, "config", "config.json", "Path to JSON config file")
	flag.IntVar(&port, "port", 0, "Override the gRPC port of addr")
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	// 1. 加载配置：文件 -> .env / 环境变量 -> 命令行
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		level.Warn(logger).Log("msg", "using default config", "path", configPath, "err", err)
		cfg = config.DefaultConfig()
	}
	if err := cfg.ApplyEnv(); err != nil {
		fatal(logger, "apply env", err)
	}
	if port > 0 {
		host := "localhost"
		if i := strings.LastIndex(cfg.Addr, ":"); i >= 0 {
			host = cfg.Addr[:i]
		}
		cfg.Addr = fmt.Sprintf("%s:%d", host, port)
	}
	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid config", err)
	}
	logger = level.NewFilter(logger, levelOption(cfg.LogLevel))
	logger = log.With(logger, "node", cfg.Addr)

	// 2. 存储：缓存盘 + 后端
	cacheStore, err := newCacheStore(cfg)
	if err != nil {
		fatal(logger, "create cache store", err)
	}
	backend, err := newBackend(cfg.Backend)
	if err != nil {
		fatal(logger, "create backend", err)
	}

	// 3. 索引与 storlet
	idx, err := cache.New(cfg.CacheSize, cfg.CachePolicy, logger)
	if err != nil {
		fatal(logger, "create cache index", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []storlet.SSDCacheOption{
		storlet.WithLogger(logger),
		storlet.WithMetrics(metrics.NewMetrics(reg)),
	}
	if cfg.PopulateOnMiss {
		opts = append(opts, storlet.WithPopulateOnMiss())
	}

	n := node.New(cfg.Addr, logger)
	for _, s := range []storlet.Storlet{
		storlet.NewSSDCache(idx, cacheStore, backend, opts...),
		storlet.NewPassthrough(backend),
		storlet.NewPushdown(backend, logger),
	} {
		if err := n.Register(s); err != nil {
			fatal(logger, "register storlet", err)
		}
	}
	level.Info(logger).Log("msg", "storlets registered", "storlets", strings.Join(n.Names(), ","),
		"policy", idx.Policy(), "capacity", idx.Capacity())

	// 4. gRPC 服务，同时作为节点选择器
	svr := server.NewServer(cfg.Addr, n, logger)
	n.RegisterPeers(svr)

	go func() {
		if err := svr.Start(); err != nil {
			fatal(logger, "grpc server stopped", err)
		}
	}()

	var httpSvr *server.HTTPServer
	if cfg.HTTPAddr != "" {
		httpSvr = server.NewHTTPServer(cfg.HTTPAddr, n, reg, logger)
		go func() {
			if err := httpSvr.Start(); err != nil {
				fatal(logger, "http server stopped", err)
			}
		}()
	}

	// 5. 服务注册与发现；没有 etcd 时单机运行
	var (
		register *discovery.Register
		disc     *discovery.Discovery
	)
	if len(cfg.EtcdAddrs) > 0 {
		register, disc = joinCluster(cfg, svr, logger)
	} else {
		svr.SetPeers(cfg.Addr)
		level.Info(logger).Log("msg", "no etcd configured, running standalone")
	}

	// 6. 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	level.Info(logger).Log("msg", "shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if register != nil {
		if err := register.Stop(ctx); err != nil {
			level.Warn(logger).Log("msg", "deregister failed", "err", err)
		}
	}
	if disc != nil {
		_ = disc.Stop()
	}
	if httpSvr != nil {
		if err := httpSvr.Shutdown(ctx); err != nil {
			level.Warn(logger).Log("msg", "http shutdown failed", "err", err)
		}
	}
	_ = svr.Close()
	if err := n.Close(); err != nil {
		level.Warn(logger).Log("msg", "close storlets failed", "err", err)
	}
}

func joinCluster(cfg *config.ServerConfig, svr *server.Server, logger log.Logger) (*discovery.Register, *discovery.Discovery) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	register, err := discovery.NewRegister(cfg.EtcdAddrs, logger)
	if err != nil {
		fatal(logger, "create etcd register", err)
	}
	if err := register.Register(ctx, cfg.ServiceName, cfg.Addr, leaseTTL); err != nil {
		fatal(logger, "register service", err)
	}

	disc, err := discovery.NewDiscovery(cfg.EtcdAddrs, logger)
	if err != nil {
		fatal(logger, "create etcd discovery", err)
	}
	// 节点变化时重建哈希环
	err = disc.WatchService(ctx, cfg.ServiceName, func(peers []string) {
		svr.SetPeers(peers...)
		level.Info(logger).Log("msg", "cluster peers updated", "peers", strings.Join(peers, ","))
	})
	if err != nil {
		fatal(logger, "watch service", err)
	}
	return register, disc
}

func newCacheStore(cfg *config.ServerConfig) (store.Store, error) {
	var opts []store.Option
	if cfg.CacheCompress {
		opts = append(opts, store.WithCompression())
	}
	if cfg.CacheDir == "" {
		return store.NewMemory(opts...), nil
	}
	return store.NewLocal(cfg.CacheDir, opts...)
}

func newBackend(cfg config.BackendConfig) (store.Store, error) {
	switch cfg.Type {
	case config.BackendFS:
		// 后端保留原始对象路径，便于直接查看
		return store.NewLocal(cfg.Dir, store.WithRawNames())
	case config.BackendMinio:
		return store.NewMinio(store.MinioConfig{
			Endpoint:  cfg.Endpoint,
			Bucket:    cfg.Bucket,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Prefix:    cfg.Prefix,
		})
	default:
		return store.NewMemory(store.WithRawNames()), nil
	}
}

func levelOption(lvl string) level.Option {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

func fatal(logger log.Logger, msg string, err error) {
	level.Error(logger).Log("msg", msg, "err", err)
	os.Exit(1)
}
