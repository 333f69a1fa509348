package objectstore

import (
	"context"
	"time"
)

// MetricsRecorder is the interface for recording object store operation metrics.
// It keeps this package independent of the metrics package.
type MetricsRecorder interface {
	RecordOperation(operation string, durationSeconds float64, success bool)
	RecordBytesRead(bytes int64)
	RecordBytesWritten(bytes int64)
}

// InstrumentedStore wraps a Store and records metrics for each operation.
type InstrumentedStore struct {
	store   Store
	metrics MetricsRecorder
}

// NewInstrumentedStore creates an instrumented wrapper around a Store.
// If metrics is nil, operations pass through directly.
func NewInstrumentedStore(store Store, metrics MetricsRecorder) *InstrumentedStore {
	return &InstrumentedStore{
		store:   store,
		metrics: metrics,
	}
}

func (s *InstrumentedStore) record(op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.RecordOperation(op, time.Since(start).Seconds(), err == nil)
	}
}

func (s *InstrumentedStore) Put(ctx context.Context, key string, data []byte, contentType string, acl ACL) error {
	start := time.Now()
	err := s.store.Put(ctx, key, data, contentType, acl)
	s.record(OpPut, start, err)
	if err == nil && s.metrics != nil {
		s.metrics.RecordBytesWritten(int64(len(data)))
	}
	return err
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := s.store.Get(ctx, key)
	s.record(OpGet, start, err)
	if err == nil && s.metrics != nil {
		s.metrics.RecordBytesRead(int64(len(data)))
	}
	return data, err
}

func (s *InstrumentedStore) CopyPrefix(ctx context.Context, src, dst string, acl ACL) error {
	start := time.Now()
	err := s.store.CopyPrefix(ctx, src, dst, acl)
	s.record(OpCopy, start, err)
	return err
}

func (s *InstrumentedStore) DeletePrefix(ctx context.Context, prefix string) error {
	start := time.Now()
	err := s.store.DeletePrefix(ctx, prefix)
	s.record(OpDelete, start, err)
	return err
}

func (s *InstrumentedStore) SetACL(ctx context.Context, prefix string, acl ACL) error {
	start := time.Now()
	err := s.store.SetACL(ctx, prefix, acl)
	s.record(OpSetACL, start, err)
	return err
}

func (s *InstrumentedStore) SignedUploadURL(ctx context.Context, key, contentMD5, contentType string) (string, error) {
	start := time.Now()
	u, err := s.store.SignedUploadURL(ctx, key, contentMD5, contentType)
	s.record(OpSignedUpload, start, err)
	return u, err
}

func (s *InstrumentedStore) List(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := s.store.List(ctx, prefix)
	s.record(OpList, start, err)
	return keys, err
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.store.Ping(ctx)
	s.record(OpPing, start, err)
	return err
}

// Ensure InstrumentedStore implements Store.
var _ Store = (*InstrumentedStore)(nil)
