package discovery

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jmgilman/go/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Discovery 监听 etcd 中某个前缀下的节点变化，维护当前在线的节点列表
type Discovery struct {
	cli    *clientv3.Client
	mu     sync.Mutex
	nodes  map[string]struct{}
	cancel context.CancelFunc
	done   chan struct{}
	logger log.Logger
}

// NewDiscovery 创建一个发现器
func NewDiscovery(endpoints []string, logger log.Logger) (*Discovery, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNetwork, "connect to etcd")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Discovery{
		cli:    cli,
		nodes:  make(map[string]struct{}),
		logger: log.With(logger, "component", "discovery"),
	}, nil
}

// WatchService 先同步当前已注册的节点，再在后台监听后续变化
// 每次节点列表变化都会用完整列表调用 updatePeers
func (d *Discovery) WatchService(ctx context.Context, prefix string, updatePeers func([]string)) error {
	resp, err := d.cli.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return errors.Wrapf(err, errors.CodeNetwork, "list %s", prefix)
	}

	for _, kv := range resp.Kvs {
		d.apply(prefix, &clientv3.Event{Type: clientv3.EventTypePut, Kv: kv})
	}
	if nodes := d.Nodes(); len(nodes) > 0 {
		level.Info(d.logger).Log("msg", "initial nodes found", "nodes", strings.Join(nodes, ","))
		updatePeers(nodes)
	}

	wctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	// 从快照之后的版本开始监听，避免漏掉事件
	rch := d.cli.Watch(wctx, prefix, clientv3.WithPrefix(), clientv3.WithRev(resp.Header.Revision+1))
	go d.watcher(prefix, rch, updatePeers)
	return nil
}

func (d *Discovery) watcher(prefix string, rch clientv3.WatchChan, updatePeers func([]string)) {
	defer close(d.done)
	level.Info(d.logger).Log("msg", "watching prefix", "prefix", prefix)

	for wresp := range rch {
		if err := wresp.Err(); err != nil {
			level.Warn(d.logger).Log("msg", "watch error", "err", err)
			continue
		}
		for _, ev := range wresp.Events {
			d.apply(prefix, ev)
		}
		updatePeers(d.Nodes())
	}
}

// apply 把一个 etcd 事件应用到节点集合
// 删除事件没有 value，节点地址从 key 中解析
func (d *Discovery) apply(prefix string, ev *clientv3.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev.Type {
	case clientv3.EventTypePut:
		node := string(ev.Kv.Value)
		d.nodes[node] = struct{}{}
		level.Info(d.logger).Log("msg", "node added", "node", node)
	case clientv3.EventTypeDelete:
		node := strings.TrimPrefix(strings.TrimPrefix(string(ev.Kv.Key), prefix), "/")
		delete(d.nodes, node)
		level.Info(d.logger).Log("msg", "node removed", "node", node)
	}
}

// Nodes 返回当前在线的节点，按地址排序
func (d *Discovery) Nodes() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	nodes := make([]string, 0, len(d.nodes))
	for n := range d.nodes {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// Stop 停止监听并关闭连接
func (d *Discovery) Stop() error {
	if d.cancel != nil {
		d.cancel()
		<-d.done
	}
	return d.cli.Close()
}
