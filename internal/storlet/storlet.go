package storlet

// storlet 是存储系统在对象 PUT/GET 时调用的处理单元
import (
	"context"
	"io"

	"github.com/jmgilman/go/errors"
)

// 支持的操作，与缓存索引保持一致
const (
	OpPut = "PUT"
	OpGet = "GET"
)

// 与后端之间复制数据使用的缓冲区大小
const copyBufferSize = 64 << 10

// Invocation 一次 storlet 调用
// PUT 从 Input 读取对象内容；GET 把对象内容写入 Output
type Invocation struct {
	Op       string
	ObjectID string
	Params   map[string]string
	Input    io.Reader
	Output   io.Writer
}

// Result 一次调用的结果
type Result struct {
	Op       string
	ObjectID string
	Hit      bool     // GET 是否由缓存提供
	Evicted  []string // PUT 导致被淘汰的对象
	Bytes    int64    // 写入或读出的字节数
}

// Storlet 是所有 storlet 的接口
type Storlet interface {
	Name() string
	Invoke(ctx context.Context, inv *Invocation) (*Result, error)
}

func validate(inv *Invocation) error {
	if inv == nil {
		return errors.New(errors.CodeInvalidInput, "nil invocation")
	}
	if inv.ObjectID == "" {
		return errors.New(errors.CodeInvalidInput, "object id is required")
	}
	switch inv.Op {
	case OpPut:
		if inv.Input == nil {
			return errors.Newf(errors.CodeInvalidInput, "PUT %q without input", inv.ObjectID)
		}
	case OpGet:
	default:
		return errors.Newf(errors.CodeInvalidInput, "unsupported storlet operation %q", inv.Op)
	}
	return nil
}

// wrap 保留底层错误码，没有错误码的归为内部错误
func wrap(err error, format string, args ...interface{}) error {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.CodeInternal
	}
	return errors.Wrapf(err, code, format, args...)
}

func copyBuffer(dst io.Writer, src io.Reader) (int64, error) {
	if dst == nil {
		dst = io.Discard
	}
	return io.CopyBuffer(dst, src, make([]byte, copyBufferSize))
}
