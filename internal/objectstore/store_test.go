package objectstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *MockStore, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, s.Put(context.Background(), k, []byte("data:"+k), "text/plain", ACLPublicRead))
	}
}

func TestMockStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMockStore()

	require.NoError(t, s.Put(ctx, "a/b", []byte("hello"), "text/plain", ACLPublicRead))
	data, err := s.Get(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// overwrite
	require.NoError(t, s.Put(ctx, "a/b", []byte("bye"), "text/plain", ACLPublicRead))
	data, err = s.Get(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, "bye", string(data))

	_, err = s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMockStore_CopyPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMockStore()
	seed(t, s, "p/_v/latest/datapackage.json", "p/_v/latest/data/x.csv", "q/_v/latest/other")

	require.NoError(t, s.SetACL(ctx, "p/", ACLPrivate))
	require.NoError(t, s.CopyPrefix(ctx, "p/_v/latest/", "p/_v/v1/", ACLPublicRead))

	acl, ok := s.ACL("p/_v/v1/data/x.csv")
	require.True(t, ok)
	assert.Equal(t, ACLPublicRead, acl)
	acl, _ = s.ACL("p/_v/latest/data/x.csv")
	assert.Equal(t, ACLPrivate, acl)

	data, err := s.Get(ctx, "p/_v/v1/data/x.csv")
	require.NoError(t, err)
	assert.Equal(t, "data:p/_v/latest/data/x.csv", string(data))

	keys, err := s.List(ctx, "p/_v/v1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"p/_v/v1/data/x.csv", "p/_v/v1/datapackage.json"}, keys)
}

func TestMockStore_PartialFailureIsIncomplete(t *testing.T) {
	ctx := context.Background()
	s := NewMockStore()
	seed(t, s, "p/a", "p/b")
	s.FailKey(OpDelete, "p/b", ErrAccessDenied)

	err := s.DeletePrefix(ctx, "p/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncomplete))

	var be *BatchError
	require.True(t, errors.As(err, &be))
	assert.Contains(t, be.Failed, "p/b")
	assert.True(t, strings.Contains(err.Error(), "1 object(s) failed"))

	keys, _ := s.List(ctx, "p/")
	assert.Equal(t, []string{"p/b"}, keys)
}

func TestMockStore_SetACL(t *testing.T) {
	ctx := context.Background()
	s := NewMockStore()
	seed(t, s, "p/a", "p/b", "other")

	require.NoError(t, s.SetACL(ctx, "p/", ACLPrivate))

	acl, ok := s.ACL("p/a")
	require.True(t, ok)
	assert.Equal(t, ACLPrivate, acl)
	_, err := s.PublicGet("p/a")
	assert.True(t, errors.Is(err, ErrAccessDenied))

	acl, _ = s.ACL("other")
	assert.Equal(t, ACLPublicRead, acl)
}

func TestMockStore_FailOp(t *testing.T) {
	ctx := context.Background()
	s := NewMockStore()
	s.FailOp(OpPut, ErrUnavailable)

	err := s.Put(ctx, "k", []byte("x"), "", ACLPrivate)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, 1, s.Calls(OpPut))
	assert.Empty(t, s.Keys())

	s.FailOp(OpPut, nil)
	assert.NoError(t, s.Put(ctx, "k", []byte("x"), "", ACLPrivate))
}

func TestMockStore_SignedUploadURL(t *testing.T) {
	s := NewMockStore()
	u, err := s.SignedUploadURL(context.Background(), "p/_v/latest/data.csv", "abc==", "text/csv")
	require.NoError(t, err)
	assert.Contains(t, u, "p/_v/latest/data.csv")
	assert.Contains(t, u, "Content-MD5=abc%3D%3D")
}

type recorder struct {
	ops     map[string][]bool
	read    int64
	written int64
}

func (r *recorder) RecordOperation(op string, _ float64, success bool) {
	if r.ops == nil {
		r.ops = make(map[string][]bool)
	}
	r.ops[op] = append(r.ops[op], success)
}
func (r *recorder) RecordBytesRead(n int64)    { r.read += n }
func (r *recorder) RecordBytesWritten(n int64) { r.written += n }

func TestInstrumentedStore(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := NewInstrumentedStore(NewMockStore(), rec)

	require.NoError(t, s.Put(ctx, "k", []byte("12345"), "", ACLPrivate))
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)
	_, err = s.Get(ctx, "nope")
	require.Error(t, err)

	assert.Equal(t, []bool{true}, rec.ops[OpPut])
	assert.Equal(t, []bool{true, false}, rec.ops[OpGet])
	assert.Equal(t, int64(5), rec.written)
	assert.Equal(t, int64(5), rec.read)
}

func TestInstrumentedStore_NilMetrics(t *testing.T) {
	s := NewInstrumentedStore(NewMockStore(), nil)
	assert.NoError(t, s.Put(context.Background(), "k", []byte("x"), "", ACLPrivate))
	assert.NoError(t, s.Ping(context.Background()))
}
