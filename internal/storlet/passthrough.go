package storlet

import (
	"context"
	"io"

	"github.com/Crystal-SDS/filter-samples/internal/store"
)

// PassthroughName 注册到节点上的名字
const PassthroughName = "passthrough"

// Passthrough 不做任何缓存，直接读写后端存储
// 用来和 SSDCache 对比，或在缓存被关闭时替代它
type Passthrough struct {
	backend store.Store
}

func NewPassthrough(backend store.Store) *Passthrough {
	return &Passthrough{backend: backend}
}

func (p *Passthrough) Name() string {
	return PassthroughName
}

func (p *Passthrough) Invoke(ctx context.Context, inv *Invocation) (*Result, error) {
	if err := validate(inv); err != nil {
		return nil, err
	}

	switch inv.Op {
	case OpPut:
		src := inv.Input
		if inv.Output != nil {
			src = io.TeeReader(src, inv.Output)
		}
		n, err := p.backend.Put(ctx, inv.ObjectID, src)
		if err != nil {
			return nil, wrap(err, "write %q to backend", inv.ObjectID)
		}
		return &Result{Op: OpPut, ObjectID: inv.ObjectID, Evicted: []string{}, Bytes: n}, nil
	default:
		rc, err := p.backend.Get(ctx, inv.ObjectID)
		if err != nil {
			return nil, wrap(err, "read %q from backend", inv.ObjectID)
		}
		defer rc.Close()
		n, err := copyBuffer(inv.Output, rc)
		if err != nil {
			return nil, wrap(err, "stream %q", inv.ObjectID)
		}
		return &Result{Op: OpGet, ObjectID: inv.ObjectID, Evicted: []string{}, Bytes: n}, nil
	}
}

var _ Storlet = (*Passthrough)(nil)
