package storage

import (
	"context"
	"io"

	gerrors "github.com/go-faster/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/standin-hq/standin/modules/document/domain/document"
	"github.com/standin-hq/standin/pkg/configuration"
)

type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(opts configuration.MinioOptions) (document.Storage, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, gerrors.Wrap(err, "minio client")
	}
	return &MinioStorage{client: client, bucket: opts.Bucket}, nil
}

func (s *MinioStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return gerrors.Wrap(err, "check bucket")
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return gerrors.Wrap(err, "make bucket")
	}
	return nil
}

func (s *MinioStorage) Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return gerrors.Wrap(err, "put object")
	}
	return nil
}

func (s *MinioStorage) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, gerrors.Wrap(err, "get object")
	}
	return obj, nil
}

func (s *MinioStorage) Remove(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return gerrors.Wrap(err, "remove object")
	}
	return nil
}
