package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/datapackage-registry/internal/objectstore"
	"github.com/localnerve/datapackage-registry/internal/testenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, endpoint string) *Store {
	t.Helper()
	store, err := New(context.Background(), Config{
		Bucket:          "datapackages",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     "access",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
		SignedURLTTL:    10 * time.Minute,
	})
	require.NoError(t, err)
	return store
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestSignedUploadURL(t *testing.T) {
	store := newTestStore(t, "http://127.0.0.1:9000")

	url, err := store.SignedUploadURL(context.Background(), "metadata/core/gdp/_v/latest/datapackage.json", "1B2M2Y8AsgTpgAmY7PhCfg==", "application/json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://127.0.0.1:9000/datapackages/metadata/core/gdp/_v/latest/datapackage.json?"), url)
	assert.Contains(t, url, "X-Amz-Expires=600")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "content-md5")
}

func TestCopySourceEscapesKey(t *testing.T) {
	assert.Equal(t, "datapackages/metadata/core/my%20pkg/_v/latest/datapackage.json",
		copySource("datapackages", "metadata/core/my pkg/_v/latest/datapackage.json"))
}

const errorBody = `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`

func fakeS3(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		switch r.URL.Path {
		case "/datapackages":
			w.WriteHeader(http.StatusOK)
		case "/datapackages/present":
			w.Header().Set("Content-Type", "text/plain")
			w.Header().Set("Content-Length", "5")
			_, _ = w.Write([]byte("hello"))
		case "/datapackages/secret":
			w.WriteHeader(http.StatusForbidden)
			_, _ = fmt.Fprintf(w, errorBody, "AccessDenied", "Access Denied")
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprintf(w, errorBody, "NoSuchKey", "The specified key does not exist.")
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestErrorMapping(t *testing.T) {
	store := newTestStore(t, fakeS3(t).URL)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	data, err := store.Get(ctx, "present")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, objectstore.ErrNotFound)
	var objErr *objectstore.ObjectError
	require.True(t, errors.As(err, &objErr))
	assert.Equal(t, objectstore.OpGet, objErr.Op)
	assert.Equal(t, "missing", objErr.Key)

	_, err = store.Get(ctx, "secret")
	assert.ErrorIs(t, err, objectstore.ErrAccessDenied)
}

func TestUnreachableEndpoint(t *testing.T) {
	store := newTestStore(t, "http://127.0.0.1:1")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := store.Ping(ctx)
	assert.ErrorIs(t, err, objectstore.ErrUnavailable)
}

func TestMinIORoundTrip(t *testing.T) {
	testenv.SkipUnlessDocker(t)

	containers, err := testenv.StartObjectStore(t)
	require.NoError(t, err)
	t.Cleanup(func() { containers.Terminate(t) })

	ctx := context.Background()
	store, err := New(ctx, Config{
		Bucket:          containers.S3Bucket,
		Endpoint:        containers.S3Endpoint,
		AccessKeyID:     containers.S3AccessKey,
		SecretAccessKey: containers.S3SecretKey,
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, store.EnsureBucket(ctx))
	require.NoError(t, store.Ping(ctx))

	src := "metadata/core/gdp/_v/latest/"
	dst := "metadata/core/gdp/_v/v1/"
	require.NoError(t, store.Put(ctx, src+"datapackage.json", []byte(`{"name":"gdp"}`), "application/json", objectstore.ACLPublicRead))
	require.NoError(t, store.Put(ctx, src+"data/gdp.csv", []byte("a,b\n1,2\n"), "text/csv", objectstore.ACLPublicRead))

	require.NoError(t, store.CopyPrefix(ctx, src, dst, objectstore.ACLPublicRead))
	copied, err := store.Get(ctx, dst+"data/gdp.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(copied))

	keys, err := store.List(ctx, "metadata/core/gdp/")
	require.NoError(t, err)
	assert.Len(t, keys, 4)

	require.NoError(t, store.SetACL(ctx, "metadata/core/gdp/", objectstore.ACLPrivate))

	url, err := store.SignedUploadURL(ctx, src+"README.md", "", "text/markdown")
	require.NoError(t, err)
	assert.Contains(t, url, containers.S3Endpoint)

	require.NoError(t, store.DeletePrefix(ctx, "metadata/core/gdp/"))
	keys, err = store.List(ctx, "metadata/core/gdp/")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = store.Get(ctx, src+"datapackage.json")
	assert.ErrorIs(t, err, objectstore.ErrNotFound)
}
