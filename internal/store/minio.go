package store

import (
	"context"
	"io"
	"strings"

	"github.com/jmgilman/go/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// 长度未知时按 16MiB 分片上传
const minioPartSize = 16 << 20

// MinioConfig S3 兼容存储的连接参数
type MinioConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string        // 所有对象键的公共前缀，可以为空
	Client    *minio.Client // 不为空时直接使用，忽略 Endpoint 和凭证
}

func (c MinioConfig) validate() error {
	if c.Bucket == "" {
		return errors.New(errors.CodeInvalidConfig, "minio bucket is required")
	}
	if c.Client == nil && c.Endpoint == "" {
		return errors.New(errors.CodeInvalidConfig, "minio endpoint is required")
	}
	return nil
}

// MinioStore 以对象存储作为后端存储
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinio 创建 MinIO 存储，不会主动检查连通性
func NewMinio(cfg MinioConfig) (*MinioStore, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "create minio client")
		}
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (m *MinioStore) key(name string) string {
	name = strings.TrimPrefix(name, "/")
	if m.prefix == "" {
		return name
	}
	return m.prefix + "/" + name
}

// Put 流式上传，长度未知
func (m *MinioStore) Put(ctx context.Context, name string, r io.Reader) (int64, error) {
	info, err := m.client.PutObject(ctx, m.bucket, m.key(name), r, -1, minio.PutObjectOptions{
		PartSize: minioPartSize,
	})
	if err != nil {
		return 0, translate(err, "put", name)
	}
	return info.Size, nil
}

// Get GetObject 是惰性的，先 Stat 一次让不存在的对象立即报错
func (m *MinioStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, m.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, translate(err, "get", name)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, translate(err, "get", name)
	}
	return obj, nil
}

// Delete S3 删除不存在的对象也返回成功
func (m *MinioStore) Delete(ctx context.Context, name string) error {
	err := m.client.RemoveObject(ctx, m.bucket, m.key(name), minio.RemoveObjectOptions{})
	if err != nil && !IsNotFound(translate(err, "delete", name)) {
		return translate(err, "delete", name)
	}
	return nil
}

func (m *MinioStore) Size(ctx context.Context, name string) (int64, error) {
	info, err := m.client.StatObject(ctx, m.bucket, m.key(name), minio.StatObjectOptions{})
	if err != nil {
		return 0, translate(err, "stat", name)
	}
	return info.Size, nil
}

// translate 把 MinIO 的错误码转换为统一的错误码
func translate(err error, op, name string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return notFound(op, name)
	case "AccessDenied":
		return errors.Wrapf(err, errors.CodeForbidden, "minio %s %q", op, name)
	}
	return errors.Wrapf(err, errors.CodeInternal, "minio %s %q", op, name)
}

var _ Store = (*MinioStore)(nil)
