package node

import (
	"context"

	pb "github.com/Crystal-SDS/filter-samples/api/storletpb"
)

// 节点之间通信的接口抽象层

// PeerPicker 根据对象 ID 选择负责它的节点（基于一致性哈希）
type PeerPicker interface {
	// PickPeer 选中的是远程节点时返回 true，选中自己或没有节点时返回 false
	PickPeer(objectID string) (peer PeerClient, ok bool)
}

// PeerClient 远程节点的客户端
// 网络层面的失败必须返回 NETWORK_ERROR，调用方据此决定是否在本地处理
type PeerClient interface {
	Invoke(ctx context.Context, in *pb.InvokeRequest) (*pb.InvokeResponse, error)
}
