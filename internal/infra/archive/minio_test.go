package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/StuFraser/aqua-ripple/pkg/logger"
)

func newFakeS3(t *testing.T, bucketChecks, puts *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/analyses":
			atomic.AddInt32(bucketChecks, 1)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut:
			atomic.AddInt32(puts, 1)
			w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMinioStoreRetriesBucketCheckAfterFailure(t *testing.T) {
	var bucketChecks, puts int32
	srv := newFakeS3(t, &bucketChecks, &puts)

	store, err := NewMinioStore(srv.URL, "access", "secret", "analyses", "us-east-1", logger.Discard())
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	err = store.Put(cancelled, "analyses/2025/06/01/a.json", []byte(`{}`), "application/json")
	require.Error(t, err)
	require.EqualValues(t, 0, atomic.LoadInt32(&puts))

	err = store.Put(context.Background(), "analyses/2025/06/01/a.json", []byte(`{}`), "application/json")
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&puts))
	require.EqualValues(t, 1, atomic.LoadInt32(&bucketChecks))

	err = store.Put(context.Background(), "analyses/2025/06/01/b.json", []byte(`{}`), "application/json")
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&puts))
	require.EqualValues(t, 1, atomic.LoadInt32(&bucketChecks))
}
