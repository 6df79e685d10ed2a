package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/cespare/xxhash/v2"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/golang/snappy"
	"github.com/jmgilman/go/errors"
)

const tmpDir = ".tmp"

// FSStore 把对象保存为 billy 文件系统上的文件
// 默认文件名是对象 ID 的 xxhash，避免 ID 中的特殊字符和目录层级
type FSStore struct {
	bfs      billy.Filesystem
	rawNames bool
	compress bool
}

// Option 配置 FSStore
type Option func(*FSStore)

// WithRawNames 直接使用对象 ID 作为文件路径
func WithRawNames() Option {
	return func(s *FSStore) { s.rawNames = true }
}

// WithCompression 使用 snappy 压缩文件内容，Put 返回的仍是压缩前的字节数
func WithCompression() Option {
	return func(s *FSStore) { s.compress = true }
}

// NewFSStore 基于任意 billy 文件系统创建存储
func NewFSStore(bfs billy.Filesystem, opts ...Option) *FSStore {
	s := &FSStore{bfs: bfs}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewLocal 在本地目录 dir 下创建存储，目录不存在时自动创建
func NewLocal(dir string, opts ...Option) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "create store directory %s", dir)
	}
	return NewFSStore(osfs.New(dir), opts...), nil
}

// NewMemory 创建内存存储，主要用于测试和没有配置缓存目录的情况
func NewMemory(opts ...Option) *FSStore {
	return NewFSStore(memfs.New(), opts...)
}

// Filesystem 返回底层的 billy 文件系统
func (s *FSStore) Filesystem() billy.Filesystem {
	return s.bfs
}

// filename 把对象 ID 映射为文件路径
func (s *FSStore) filename(name string) string {
	if s.rawNames {
		// 去掉开头的 "/" 和 ".."，保证路径落在根目录内
		return path.Clean("/" + name)[1:]
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(name))
}

// Put 先写临时文件再重命名，读者永远看不到写了一半的文件
func (s *FSStore) Put(_ context.Context, name string, r io.Reader) (int64, error) {
	p := s.filename(name)
	if name == "" || p == "" {
		return 0, errors.Newf(errors.CodeInvalidInput, "invalid object name %q", name)
	}

	if err := s.bfs.MkdirAll(tmpDir, 0o755); err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "create temp directory")
	}
	tmp, err := s.bfs.TempFile(tmpDir, "put-")
	if err != nil {
		return 0, errors.Wrapf(err, errors.CodeInternal, "create temp file for %q", name)
	}

	n, err := s.write(tmp, r)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		_ = s.bfs.Remove(tmp.Name())
		return n, errors.Wrapf(err, errors.CodeInternal, "write %q", name)
	}

	if dir := path.Dir(p); dir != "." {
		if err := s.bfs.MkdirAll(dir, 0o755); err != nil {
			_ = s.bfs.Remove(tmp.Name())
			return n, errors.Wrapf(err, errors.CodeInternal, "create directory for %q", name)
		}
	}
	if err := s.bfs.Rename(tmp.Name(), p); err != nil {
		_ = s.bfs.Remove(tmp.Name())
		return n, errors.Wrapf(err, errors.CodeInternal, "rename %q into place", name)
	}
	return n, nil
}

func (s *FSStore) write(w io.Writer, r io.Reader) (int64, error) {
	if !s.compress {
		return io.Copy(w, r)
	}
	sw := snappy.NewBufferedWriter(w)
	n, err := io.Copy(sw, r)
	if err != nil {
		return n, err
	}
	return n, sw.Close()
}

// Get 打开对象读取，调用方负责 Close
func (s *FSStore) Get(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := s.bfs.Open(s.filename(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound("get", name)
		}
		return nil, errors.Wrapf(err, errors.CodeInternal, "open %q", name)
	}
	if !s.compress {
		return f, nil
	}
	return &snappyReadCloser{Reader: snappy.NewReader(f), f: f}, nil
}

// Delete 删除对象，对象不存在时直接返回
func (s *FSStore) Delete(_ context.Context, name string) error {
	err := s.bfs.Remove(s.filename(name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.CodeInternal, "delete %q", name)
	}
	return nil
}

// Size 返回对象的逻辑大小（压缩时需要完整解压一遍）
func (s *FSStore) Size(ctx context.Context, name string) (int64, error) {
	if !s.compress {
		fi, err := s.bfs.Stat(s.filename(name))
		if err != nil {
			if os.IsNotExist(err) {
				return 0, notFound("stat", name)
			}
			return 0, errors.Wrapf(err, errors.CodeInternal, "stat %q", name)
		}
		return fi.Size(), nil
	}

	rc, err := s.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	n, err := io.Copy(io.Discard, rc)
	if err != nil {
		return 0, errors.Wrapf(err, errors.CodeInternal, "read %q", name)
	}
	return n, nil
}

type snappyReadCloser struct {
	*snappy.Reader
	f billy.File
}

func (r *snappyReadCloser) Close() error {
	return r.f.Close()
}

var _ Store = (*FSStore)(nil)
