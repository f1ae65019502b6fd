package minio

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMinio struct {
	buckets map[string]bool
	objects map[string][]byte

	statErr error
}

func newFakeMinio() *fakeMinio {
	return &fakeMinio{
		buckets: map[string]bool{},
		objects: map[string][]byte{},
	}
}

func (f *fakeMinio) BucketExists(_ context.Context, bucketName string) (bool, error) {
	return f.buckets[bucketName], nil
}

func (f *fakeMinio) MakeBucket(_ context.Context, bucketName string, _ minio.MakeBucketOptions) error {
	f.buckets[bucketName] = true
	return nil
}

func (f *fakeMinio) PutObject(_ context.Context, _, objectName string, reader io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[objectName] = data
	return minio.UploadInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeMinio) GetObject(_ context.Context, _, objectName string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	data, ok := f.objects[objectName]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeMinio) RemoveObject(_ context.Context, _, objectName string, _ minio.RemoveObjectOptions) error {
	delete(f.objects, objectName)
	return nil
}

func (f *fakeMinio) StatObject(_ context.Context, _, objectName string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if f.statErr != nil {
		return minio.ObjectInfo{}, f.statErr
	}
	if _, ok := f.objects[objectName]; !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return minio.ObjectInfo{Key: objectName}, nil
}

func TestNewClientWithAPI_CreatesBucket(t *testing.T) {
	ctx := context.Background()
	fake := newFakeMinio()

	_, err := NewClientWithAPI(ctx, fake, "payloads")
	require.NoError(t, err)

	assert.True(t, fake.buckets["payloads"])
}

func TestNewClientWithAPI_ExistingBucket(t *testing.T) {
	ctx := context.Background()
	fake := newFakeMinio()
	fake.buckets["payloads"] = true

	_, err := NewClientWithAPI(ctx, fake, "payloads")
	require.NoError(t, err)
}

func TestClient_UploadDownload(t *testing.T) {
	ctx := context.Background()
	fake := newFakeMinio()

	client, err := NewClientWithAPI(ctx, fake, "payloads")
	require.NoError(t, err)

	blob := []byte("AQAAGGoS...ciphertext")
	err = client.Upload(ctx, "records/abc", bytes.NewReader(blob))
	require.NoError(t, err)

	rc, err := client.Download(ctx, "records/abc")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, blob, got)
}

func TestClient_Exists(t *testing.T) {
	ctx := context.Background()
	fake := newFakeMinio()

	client, err := NewClientWithAPI(ctx, fake, "payloads")
	require.NoError(t, err)

	exists, err := client.Exists(ctx, "records/missing")
	require.NoError(t, err)
	assert.False(t, exists)

	err = client.Upload(ctx, "records/abc", bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	exists, err = client.Exists(ctx, "records/abc")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestClient_Delete(t *testing.T) {
	ctx := context.Background()
	fake := newFakeMinio()

	client, err := NewClientWithAPI(ctx, fake, "payloads")
	require.NoError(t, err)

	err = client.Upload(ctx, "records/abc", bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	err = client.Delete(ctx, "records/abc")
	require.NoError(t, err)

	exists, err := client.Exists(ctx, "records/abc")
	require.NoError(t, err)
	assert.False(t, exists)
}
