package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/jmgilman/go/errors"
	"github.com/joho/godotenv"
)

// 后端存储类型
const (
	BackendFS     = "fs"
	BackendMemory = "memory"
	BackendMinio  = "minio"
)

// BackendConfig 后端存储（对象的权威副本）
type BackendConfig struct {
	Type      string `json:"type"`       // "fs", "memory", "minio"
	Dir       string `json:"dir"`        // fs 的根目录
	Endpoint  string `json:"endpoint"`   // minio 地址，例如 "localhost:9000"
	Bucket    string `json:"bucket"`     // minio bucket
	AccessKey string `json:"access_key"` // minio 凭证
	SecretKey string `json:"secret_key"`
	UseSSL    bool   `json:"use_ssl"`
	Prefix    string `json:"prefix"` // minio 对象键前缀
}

// ServerConfig 定义服务端配置结构
// 采用扁平化结构，main.go 直接读取 cfg.Addr、cfg.EtcdAddrs 等字段
type ServerConfig struct {
	Addr           string        `json:"addr"`             // gRPC 监听地址，例如 "localhost:8001"
	HTTPAddr       string        `json:"http_addr"`        // 调试 HTTP 地址，为空则不启动
	EtcdAddrs      []string      `json:"etcd_addrs"`       // etcd 集群地址列表，为空则单机运行
	ServiceName    string        `json:"service_name"`     // 服务注册前缀
	CacheSize      int64         `json:"cache_size"`       // 缓存容量 (bytes)
	CachePolicy    string        `json:"cache_policy"`     // 淘汰策略: "LRU", "LFU"
	CacheDir       string        `json:"cache_dir"`        // 缓存文件目录，为空则使用内存
	CacheCompress  bool          `json:"cache_compress"`   // 缓存文件是否使用 snappy 压缩
	PopulateOnMiss bool          `json:"populate_on_miss"` // GET 未命中时回填缓存
	LogLevel       string        `json:"log_level"`        // debug, info, warn, error
	Backend        BackendConfig `json:"backend"`
}

// DefaultConfig 返回默认配置
// 当配置文件不存在或加载失败时，main.go 会使用此默认值
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Addr:        "localhost:8001",
		HTTPAddr:    "localhost:9001",
		EtcdAddrs:   nil,
		ServiceName: "storlet/nodes",
		CacheSize:   100 << 20, // 100MB
		CachePolicy: "LFU",
		CacheDir:    "/cache/",
		LogLevel:    "info",
		Backend: BackendConfig{
			Type: BackendMemory,
		},
	}
}

// LoadConfig 从指定路径加载 JSON 配置文件，文件中没有的字段保留默认值
func LoadConfig(path string) (*ServerConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		// 由调用方决定是否使用默认配置
		return nil, errors.Wrapf(err, errors.CodeNotFound, "open config %s", path)
	}
	defer file.Close()

	cfg := DefaultConfig()
	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "decode config %s", path)
	}
	return cfg, nil
}

// ApplyEnv 加载当前目录下可选的 .env 文件，再用 STORLET_* 环境变量覆盖配置
// .env 不会覆盖已经存在的环境变量
func (c *ServerConfig) ApplyEnv(envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.CodeInvalidConfig, "load env file")
	}

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	var err error
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok && err == nil {
			b, perr := strconv.ParseBool(v)
			if perr != nil {
				err = errors.Wrapf(perr, errors.CodeInvalidConfig, "%s", key)
				return
			}
			*dst = b
		}
	}

	str("STORLET_ADDR", &c.Addr)
	str("STORLET_HTTP_ADDR", &c.HTTPAddr)
	str("STORLET_SERVICE_NAME", &c.ServiceName)
	str("STORLET_CACHE_POLICY", &c.CachePolicy)
	str("STORLET_CACHE_DIR", &c.CacheDir)
	str("STORLET_LOG_LEVEL", &c.LogLevel)
	str("STORLET_BACKEND_TYPE", &c.Backend.Type)
	str("STORLET_BACKEND_DIR", &c.Backend.Dir)
	str("STORLET_BACKEND_ENDPOINT", &c.Backend.Endpoint)
	str("STORLET_BACKEND_BUCKET", &c.Backend.Bucket)
	str("STORLET_BACKEND_ACCESS_KEY", &c.Backend.AccessKey)
	str("STORLET_BACKEND_SECRET_KEY", &c.Backend.SecretKey)
	str("STORLET_BACKEND_PREFIX", &c.Backend.Prefix)
	boolean("STORLET_CACHE_COMPRESS", &c.CacheCompress)
	boolean("STORLET_POPULATE_ON_MISS", &c.PopulateOnMiss)
	boolean("STORLET_BACKEND_USE_SSL", &c.Backend.UseSSL)
	if err != nil {
		return err
	}

	if v, ok := os.LookupEnv("STORLET_ETCD_ADDRS"); ok {
		c.EtcdAddrs = splitList(v)
	}
	if v, ok := os.LookupEnv("STORLET_CACHE_SIZE"); ok {
		size, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			return errors.Wrap(perr, errors.CodeInvalidConfig, "STORLET_CACHE_SIZE")
		}
		c.CacheSize = size
	}
	return nil
}

// Validate 检查配置是否可用
// 无法识别的 cache_policy 不在这里报错，索引会回退到 LRU 并打印警告
func (c *ServerConfig) Validate() error {
	if c.Addr == "" {
		return errors.New(errors.CodeInvalidConfig, "addr is required")
	}
	if c.CacheSize <= 0 {
		return errors.Newf(errors.CodeInvalidConfig, "cache_size must be greater than 0, got %d", c.CacheSize)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.Newf(errors.CodeInvalidConfig, "unknown log_level %q", c.LogLevel)
	}
	switch c.Backend.Type {
	case BackendMemory:
	case BackendFS:
		if c.Backend.Dir == "" {
			return errors.New(errors.CodeInvalidConfig, "backend.dir is required for fs backend")
		}
	case BackendMinio:
		if c.Backend.Endpoint == "" || c.Backend.Bucket == "" {
			return errors.New(errors.CodeInvalidConfig, "backend.endpoint and backend.bucket are required for minio backend")
		}
	default:
		return errors.Newf(errors.CodeInvalidConfig, "unknown backend type %q", c.Backend.Type)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
