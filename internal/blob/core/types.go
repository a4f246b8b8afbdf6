// Package core defines the blob storage contract shared by the document
// fallback store and the snapshot exporter.
package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem stores blobs under a local directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 stores blobs in an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps blobs in process memory (tests).
	DriverMemory Driver = "memory"
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is a minimal S3-like object store. Put is create-only; use Replace to
// overwrite.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

var (
	// ErrExists is returned by Put when the key is already taken.
	ErrExists = errors.New("blob already exists")
	// ErrNotExist is returned by Get for a missing key.
	ErrNotExist = errors.New("blob does not exist")
)

// Replace deletes key if present and stores data under it.
func Replace(ctx context.Context, s Store, key string, data []byte, opts PutOptions) (Info, error) {
	if _, err := s.Delete(ctx, key); err != nil {
		return Info{}, fmt.Errorf("replace %s: delete: %w", key, err)
	}
	info, err := s.Put(ctx, key, bytes.NewReader(data), opts)
	if err != nil {
		return Info{}, fmt.Errorf("replace %s: put: %w", key, err)
	}
	return info, nil
}

// ReadAll fetches the full content of key.
func ReadAll(ctx context.Context, s Store, key string) ([]byte, Info, error) {
	info, rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, Info{}, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, Info{}, fmt.Errorf("read %s: %w", key, err)
	}
	return data, info, nil
}

// CloneMetadata copies a metadata map; nil stays nil.
func CloneMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
