package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Operation names used by ObjectError, failure injection and metrics.
const (
	OpPut          = "Put"
	OpGet          = "Get"
	OpCopy         = "CopyPrefix"
	OpDelete       = "DeletePrefix"
	OpSetACL       = "SetACL"
	OpSignedUpload = "SignedUploadURL"
	OpList         = "List"
	OpPing         = "Ping"
)

// MockStore is an in-memory implementation of the Store interface for testing.
// It tracks per-object ACLs and can be told to fail operations.
type MockStore struct {
	mu      sync.RWMutex
	objects map[string]mockObject

	opFailures  map[string]error
	keyFailures map[string]map[string]error
	calls       map[string]int
}

type mockObject struct {
	data        []byte
	contentType string
	acl         ACL
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		objects:     make(map[string]mockObject),
		opFailures:  make(map[string]error),
		keyFailures: make(map[string]map[string]error),
		calls:       make(map[string]int),
	}
}

// FailOp makes every call of op return err. A nil err clears the failure.
func (s *MockStore) FailOp(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.opFailures, op)
		return
	}
	s.opFailures[op] = err
}

// FailKey makes the prefix operation op fail for key only, so the call
// returns a *BatchError while the other objects are processed.
func (s *MockStore) FailKey(op, key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keyFailures[op] == nil {
		s.keyFailures[op] = make(map[string]error)
	}
	s.keyFailures[op][key] = err
}

// Calls returns how many times op was invoked.
func (s *MockStore) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// ACL returns the ACL of key and whether the object exists.
func (s *MockStore) ACL(key string) (ACL, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj.acl, ok
}

// PublicGet reads key the way an anonymous client would.
func (s *MockStore) PublicGet(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	if obj.acl != ACLPublicRead {
		return nil, ErrAccessDenied
	}
	return append([]byte(nil), obj.data...), nil
}

// Keys returns every stored key in order.
func (s *MockStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedKeys("")
}

// begin records the call and returns the injected failure for op, if any.
func (s *MockStore) begin(op, key string) error {
	s.calls[op]++
	if err, ok := s.opFailures[op]; ok {
		return &ObjectError{Op: op, Key: key, Err: err}
	}
	return nil
}

func (s *MockStore) keyFailure(op, key string) error {
	if m, ok := s.keyFailures[op]; ok {
		return m[key]
	}
	return nil
}

func (s *MockStore) sortedKeys(prefix string) []string {
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *MockStore) Put(ctx context.Context, key string, data []byte, contentType string, acl ACL) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(OpPut, key); err != nil {
		return err
	}
	if err := s.keyFailure(OpPut, key); err != nil {
		return &ObjectError{Op: OpPut, Key: key, Err: err}
	}

	s.objects[key] = mockObject{
		data:        append([]byte(nil), data...),
		contentType: contentType,
		acl:         acl,
	}
	return nil
}

func (s *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(OpGet, key); err != nil {
		return nil, err
	}
	obj, ok := s.objects[key]
	if !ok {
		return nil, &ObjectError{Op: OpGet, Key: key, Err: ErrNotFound}
	}
	return append([]byte(nil), obj.data...), nil
}

func (s *MockStore) CopyPrefix(ctx context.Context, src, dst string, acl ACL) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(OpCopy, src); err != nil {
		return err
	}

	failed := make(map[string]error)
	for _, k := range s.sortedKeys(src) {
		if err := s.keyFailure(OpCopy, k); err != nil {
			failed[k] = err
			continue
		}
		obj := s.objects[k]
		obj.data = append([]byte(nil), obj.data...)
		obj.acl = acl
		s.objects[dst+strings.TrimPrefix(k, src)] = obj
	}
	if len(failed) > 0 {
		return &BatchError{Op: OpCopy, Prefix: src, Failed: failed}
	}
	return nil
}

func (s *MockStore) DeletePrefix(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(OpDelete, prefix); err != nil {
		return err
	}

	failed := make(map[string]error)
	for _, k := range s.sortedKeys(prefix) {
		if err := s.keyFailure(OpDelete, k); err != nil {
			failed[k] = err
			continue
		}
		delete(s.objects, k)
	}
	if len(failed) > 0 {
		return &BatchError{Op: OpDelete, Prefix: prefix, Failed: failed}
	}
	return nil
}

func (s *MockStore) SetACL(ctx context.Context, prefix string, acl ACL) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(OpSetACL, prefix); err != nil {
		return err
	}

	failed := make(map[string]error)
	for _, k := range s.sortedKeys(prefix) {
		if err := s.keyFailure(OpSetACL, k); err != nil {
			failed[k] = err
			continue
		}
		obj := s.objects[k]
		obj.acl = acl
		s.objects[k] = obj
	}
	if len(failed) > 0 {
		return &BatchError{Op: OpSetACL, Prefix: prefix, Failed: failed}
	}
	return nil
}

func (s *MockStore) SignedUploadURL(ctx context.Context, key, contentMD5, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(OpSignedUpload, key); err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("Content-MD5", contentMD5)
	if contentType != "" {
		q.Set("Content-Type", contentType)
	}
	return fmt.Sprintf("https://mock.objectstore.local/%s?%s", key, q.Encode()), nil
}

func (s *MockStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(OpList, prefix); err != nil {
		return nil, err
	}
	return s.sortedKeys(prefix), nil
}

func (s *MockStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begin(OpPing, "")
}

var _ Store = (*MockStore)(nil)
