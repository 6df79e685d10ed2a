package node

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jmgilman/go/errors"
	"google.golang.org/protobuf/proto"

	pb "github.com/Crystal-SDS/filter-samples/api/storletpb"
	"github.com/Crystal-SDS/filter-samples/internal/storlet"
)

// Node 持有本节点注册的所有 storlet，并负责把请求路由到对象的归属节点
// 流程：选节点 -> (远程) RPC 转发 -> (失败或本地) 本地执行
type Node struct {
	self     string // 当前节点地址，例如 "localhost:8001"
	mu       sync.RWMutex
	storlets map[string]storlet.Storlet
	peers    PeerPicker
	logger   log.Logger
}

// New 创建节点
func New(self string, logger log.Logger) *Node {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Node{
		self:     self,
		storlets: make(map[string]storlet.Storlet),
		logger:   log.With(logger, "node", self),
	}
}

// Register 注册一个 storlet，同名注册返回 ALREADY_EXISTS
func (n *Node) Register(s storlet.Storlet) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.storlets[s.Name()]; ok {
		return errors.Newf(errors.CodeAlreadyExists, "storlet %s already registered", s.Name())
	}
	n.storlets[s.Name()] = s
	return nil
}

// Storlet 返回指定名称的 storlet
func (n *Node) Storlet(name string) (storlet.Storlet, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	s, ok := n.storlets[name]
	return s, ok
}

// Names 返回所有已注册 storlet 的名称
func (n *Node) Names() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(n.storlets))
	for name := range n.storlets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterPeers 注册节点选择器，只能调用一次
func (n *Node) RegisterPeers(peers PeerPicker) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.peers != nil {
		panic("RegisterPeers called more than once")
	}
	n.peers = peers
}

func (n *Node) picker() PeerPicker {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.peers
}

// Invoke 处理一次调用
// 已经被转发过的请求只在本地执行，避免节点之间来回转发
func (n *Node) Invoke(ctx context.Context, req *pb.InvokeRequest) (*pb.InvokeResponse, error) {
	if req.GetStorlet() == "" || req.GetObjectId() == "" {
		return nil, errors.New(errors.CodeInvalidInput, "storlet and object id are required")
	}
	s, ok := n.Storlet(req.GetStorlet())
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "no such storlet: %s", req.GetStorlet())
	}

	if !req.GetForwarded() {
		if picker := n.picker(); picker != nil {
			if peer, ok := picker.PickPeer(req.GetObjectId()); ok {
				resp, err := n.forward(ctx, peer, req)
				if err == nil {
					return resp, nil
				}
				if errors.GetCode(err) != errors.CodeNetwork {
					return nil, err
				}
				level.Warn(n.logger).Log("msg", "failed to invoke on peer, serving locally", "object", req.GetObjectId(), "err", err)
			}
		}
	}
	return n.invokeLocally(ctx, s, req)
}

func (n *Node) forward(ctx context.Context, peer PeerClient, req *pb.InvokeRequest) (*pb.InvokeResponse, error) {
	fwd := proto.Clone(req).(*pb.InvokeRequest)
	fwd.Forwarded = true
	return peer.Invoke(ctx, fwd)
}

func (n *Node) invokeLocally(ctx context.Context, s storlet.Storlet, req *pb.InvokeRequest) (*pb.InvokeResponse, error) {
	inv := &storlet.Invocation{
		Op:       req.GetOp(),
		ObjectID: req.GetObjectId(),
		Params:   req.GetParams(),
	}
	var out bytes.Buffer
	if req.GetOp() == storlet.OpPut {
		inv.Input = bytes.NewReader(req.GetData())
	} else {
		inv.Output = &out
	}

	res, err := s.Invoke(ctx, inv)
	if err != nil {
		return nil, err
	}
	level.Debug(n.logger).Log("msg", "invoked storlet", "storlet", s.Name(), "op", res.Op, "object", res.ObjectID, "hit", res.Hit, "bytes", res.Bytes)

	return &pb.InvokeResponse{
		Op:       res.Op,
		ObjectId: res.ObjectID,
		Hit:      res.Hit,
		Evicted:  res.Evicted,
		Bytes:    res.Bytes,
		Data:     out.Bytes(),
		Node:     n.self,
	}, nil
}

// Stats 返回指定 storlet 的调试输出
func (n *Node) Stats(name string) (string, error) {
	s, ok := n.Storlet(name)
	if !ok {
		return "", errors.Newf(errors.CodeNotFound, "no such storlet: %s", name)
	}
	if d, ok := s.(fmt.Stringer); ok {
		return d.String(), nil
	}
	return "", nil
}

// Self 返回当前节点地址
func (n *Node) Self() string {
	return n.self
}

// Close 关闭所有实现了 io.Closer 的 storlet
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	var first error
	for name, s := range n.storlets {
		c, ok := s.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			level.Error(n.logger).Log("msg", "failed to close storlet", "storlet", name, "err", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
