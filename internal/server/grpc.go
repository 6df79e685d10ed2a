package server

import (
	"context"
	"net"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jmgilman/go/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	pb "github.com/Crystal-SDS/filter-samples/api/storletpb"
	"github.com/Crystal-SDS/filter-samples/internal/consistenthash"
	"github.com/Crystal-SDS/filter-samples/internal/node"
)

const (
	// 每个真实节点在哈希环上的虚拟节点数
	defaultReplicas = 50
	// 对象内容放在消息体里，放宽 gRPC 默认的 4MB 限制
	maxMessageSize = 64 << 20
)

// Server 模块扮演三个角色：
// 1. gRPC 服务器：接收其他节点或客户端的 storlet 调用
// 2. 节点选择器（PeerPicker）：基于一致性哈希为对象选择归属节点
// 3. 客户端管理：为每个远程节点维护一个 grpcClient（实现 PeerClient）
type Server struct {
	pb.UnimplementedStorletServer
	self       string                 // 当前节点地址，例如 "localhost:8001"
	node       *node.Node             // 本地 storlet
	mu         sync.Mutex             // 保护 peers 和 clients
	peers      *consistenthash.Map    // 一致性哈希环
	clients    map[string]*grpcClient // 远程节点地址 -> gRPC 客户端
	grpcServer *grpc.Server
	lis        net.Listener
	logger     log.Logger
}

func NewServer(self string, n *node.Node, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Server{
		self:    self,
		node:    n,
		peers:   consistenthash.New(defaultReplicas, nil),
		clients: make(map[string]*grpcClient),
		logger:  log.With(logger, "component", "grpc", "self", self),
	}
}

// Start 在 s.self 上监听并阻塞提供服务
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.self)
	if err != nil {
		return errors.Wrapf(err, errors.CodeNetwork, "failed to listen at %s", s.self)
	}
	return s.Serve(lis)
}

// Serve 在给定的 listener 上阻塞提供服务
func (s *Server) Serve(lis net.Listener) error {
	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
	)
	pb.RegisterStorletServer(grpcServer, s)

	s.mu.Lock()
	s.lis = lis
	s.grpcServer = grpcServer
	s.mu.Unlock()

	level.Info(s.logger).Log("msg", "gRPC server listening", "addr", lis.Addr().String())
	return grpcServer.Serve(lis)
}

// Addr 返回实际监听的地址，还没开始监听时返回配置的地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return s.lis.Addr().String()
	}
	return s.self
}

// Close 释放所有 gRPC 连接并停止服务
func (s *Server) Close() error {
	s.mu.Lock()
	for _, c := range s.clients {
		_ = c.Close()
	}
	s.clients = make(map[string]*grpcClient)
	grpcServer := s.grpcServer
	s.mu.Unlock()

	// GracefulStop 会关闭 listener
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	return nil
}

// Invoke 处理来自其他节点或客户端的 storlet 调用
func (s *Server) Invoke(ctx context.Context, req *pb.InvokeRequest) (*pb.InvokeResponse, error) {
	resp, err := s.node.Invoke(ctx, req)
	if err != nil {
		level.Debug(s.logger).Log("msg", "invoke failed", "storlet", req.GetStorlet(), "object", req.GetObjectId(), "err", err)
		return nil, toStatus(err)
	}
	return resp, nil
}

// Stats 返回本节点上指定 storlet 的调试输出
func (s *Server) Stats(_ context.Context, req *pb.StatsRequest) (*pb.StatsResponse, error) {
	dump, err := s.node.Stats(req.GetStorlet())
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.StatsResponse{Storlet: req.GetStorlet(), Node: s.self, Dump: dump}, nil
}

// SetPeers 设置（或更新）哈希环上的节点列表
func (s *Server) SetPeers(peers ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 先关闭旧连接
	for _, c := range s.clients {
		_ = c.Close()
	}

	s.peers = consistenthash.New(defaultReplicas, nil)
	s.peers.Add(peers...)

	s.clients = make(map[string]*grpcClient, len(peers))
	for _, peer := range peers {
		s.clients[peer] = &grpcClient{addr: peer}
	}
	level.Info(s.logger).Log("msg", "peers set", "peers", len(peers))
}

// PickPeer 根据对象 ID 选择归属节点的客户端，选中自己时返回 false
func (s *Server) PickPeer(objectID string) (node.PeerClient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.peers == nil || s.peers.IsEmpty() {
		return nil, false
	}
	addr := s.peers.Get(objectID)
	if addr != "" && addr != s.self {
		if c := s.clients[addr]; c != nil {
			level.Debug(s.logger).Log("msg", "pick remote peer", "peer", addr, "object", objectID)
			return c, true
		}
	}
	return nil, false
}

// grpcClient 表示一个远程节点的 gRPC 客户端，连接在第一次调用时建立
type grpcClient struct {
	addr string
	mu   sync.Mutex
	conn *grpc.ClientConn
}

func (c *grpcClient) getConn() (*grpc.ClientConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := grpc.NewClient(c.addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMessageSize),
			grpc.MaxCallSendMsgSize(maxMessageSize),
		),
	)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c.conn, nil
}

// Invoke 把调用转发给远程节点
func (c *grpcClient) Invoke(ctx context.Context, in *pb.InvokeRequest) (*pb.InvokeResponse, error) {
	conn, err := c.getConn()
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeNetwork, "dial %s", c.addr)
	}
	resp, err := pb.NewStorletClient(conn).Invoke(ctx, in)
	if err != nil {
		return nil, fromStatus(err, c.addr)
	}
	return resp, nil
}

func (c *grpcClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

var codeToStatus = map[errors.ErrorCode]codes.Code{
	errors.CodeInvalidInput:  codes.InvalidArgument,
	errors.CodeNotFound:      codes.NotFound,
	errors.CodeAlreadyExists: codes.AlreadyExists,
	errors.CodeForbidden:     codes.PermissionDenied,
	errors.CodeUnavailable:   codes.Unavailable,
	errors.CodeNetwork:       codes.Unavailable,
	errors.CodeTimeout:       codes.DeadlineExceeded,
}

// toStatus 把错误码转换为 gRPC 状态码
func toStatus(err error) error {
	code, ok := codeToStatus[errors.GetCode(err)]
	if !ok {
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

// fromStatus 把远程节点返回的状态码还原为错误码
// 连接失败、超时、远程不可用都视为网络错误
func fromStatus(err error, addr string) error {
	code := errors.CodeNetwork
	switch status.Code(err) {
	case codes.InvalidArgument:
		code = errors.CodeInvalidInput
	case codes.NotFound:
		code = errors.CodeNotFound
	case codes.AlreadyExists:
		code = errors.CodeAlreadyExists
	case codes.PermissionDenied:
		code = errors.CodeForbidden
	case codes.Internal:
		code = errors.CodeInternal
	}
	return errors.Wrapf(err, code, "rpc Invoke to %s failed", addr)
}

var _ node.PeerPicker = (*Server)(nil)
