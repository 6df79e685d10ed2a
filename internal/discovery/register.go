package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jmgilman/go/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const dialTimeout = 5 * time.Second

// Register 负责向 etcd 注册本节点并保持心跳
type Register struct {
	cli         *clientv3.Client
	leaseID     clientv3.LeaseID
	keepaliveCh <-chan *clientv3.LeaseKeepAliveResponse
	cancel      context.CancelFunc // 停止续约
	done        chan struct{}
	stopOnce    sync.Once
	logger      log.Logger
}

// NewRegister 创建一个注册器，endpoints 是 etcd 集群地址列表
func NewRegister(endpoints []string, logger log.Logger) (*Register, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNetwork, "connect to etcd")
	}
	return newRegister(cli, logger), nil
}

func newRegister(cli *clientv3.Client, logger log.Logger) *Register {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Register{
		cli:    cli,
		done:   make(chan struct{}),
		logger: log.With(logger, "component", "register"),
	}
}

// Register 把 serviceName/nodeAddr -> nodeAddr 写入 etcd 并绑定租约
// 节点正常运行时租约一直续期；进程退出后租约过期，key 自动删除
func (r *Register) Register(ctx context.Context, serviceName, nodeAddr string, ttl int64) error {
	grantResp, err := r.cli.Grant(ctx, ttl)
	if err != nil {
		return errors.Wrapf(err, errors.CodeNetwork, "grant lease with ttl %d", ttl)
	}
	r.leaseID = grantResp.ID

	key := serviceKey(serviceName, nodeAddr)
	if _, err := r.cli.Put(ctx, key, nodeAddr, clientv3.WithLease(r.leaseID)); err != nil {
		return errors.Wrapf(err, errors.CodeNetwork, "put %s", key)
	}

	// 续约的生命周期和 Register 绑定，而不是和调用方的 ctx 绑定
	kaCtx, cancel := context.WithCancel(context.Background())
	keepAliveCh, err := r.cli.KeepAlive(kaCtx, r.leaseID)
	if err != nil {
		cancel()
		return errors.Wrapf(err, errors.CodeNetwork, "keep lease %x alive", r.leaseID)
	}
	r.keepaliveCh = keepAliveCh
	r.cancel = cancel

	level.Info(r.logger).Log("msg", "registered node", "key", key, "ttl", ttl)
	go r.watcher()
	return nil
}

// watcher 消费续约响应，通道关闭说明租约丢失
func (r *Register) watcher() {
	defer close(r.done)
	for res := range r.keepaliveCh {
		level.Debug(r.logger).Log("msg", "lease renewed", "lease", res.ID, "ttl", res.TTL)
	}
	level.Warn(r.logger).Log("msg", "lease keep-alive channel closed")
}

// Stop 撤销租约（etcd 会删除绑定的 key）并关闭连接，可以重复调用
func (r *Register) Stop(ctx context.Context) error {
	var err error
	r.stopOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
			<-r.done
		}
		if r.leaseID != 0 {
			if _, rerr := r.cli.Revoke(ctx, r.leaseID); rerr != nil {
				err = errors.Wrap(rerr, errors.CodeNetwork, "revoke lease")
			}
		}
		if cerr := r.cli.Close(); err == nil && cerr != nil {
			err = cerr
		}
	})
	return err
}

func serviceKey(serviceName, nodeAddr string) string {
	return serviceName + "/" + nodeAddr
}
