package store

// 对象内容存储的抽象：缓存存储（SSD 目录）和后端存储（对象存储）都实现这个接口
import (
	"context"
	"io"

	"github.com/jmgilman/go/errors"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New(errors.CodeNotFound, "object not found")

// Store 按名字存取对象内容
// Get/Size 在对象不存在时返回 NOT_FOUND 错误；Delete 不存在的对象不算错误
type Store interface {
	Put(ctx context.Context, name string, r io.Reader) (int64, error)
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	Size(ctx context.Context, name string) (int64, error)
}

// IsNotFound 判断错误是否表示对象不存在
func IsNotFound(err error) bool {
	return errors.GetCode(err) == errors.CodeNotFound
}

func notFound(op, name string) error {
	return errors.Wrapf(ErrNotFound, errors.CodeNotFound, "%s %q", op, name)
}
