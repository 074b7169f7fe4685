package diag

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Localhost(t *testing.T) {
	addrs, err := Resolve(context.Background(), "localhost")
	require.NoError(t, err)
	require.NotEmpty(t, addrs)
	for i := 1; i < len(addrs); i++ {
		assert.LessOrEqual(t, addrs[i-1], addrs[i], "addresses must be sorted")
	}
}

func TestResolve_Unresolvable(t *testing.T) {
	_, err := Resolve(context.Background(), "host.invalid")
	assert.Error(t, err)
}

func TestHTTPProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	res, err := HTTPProbe(context.Background(), srv.URL, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, res.StatusCode)
	assert.Greater(t, res.Latency, time.Duration(0))
}

func TestHTTPProbe_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := HTTPProbe(context.Background(), srv.URL, 50*time.Millisecond)
	assert.Error(t, err)
}

func TestHTTPProbe_BadURL(t *testing.T) {
	_, err := HTTPProbe(context.Background(), "http://127.0.0.1:1", time.Second)
	assert.Error(t, err)
}

func TestTraceroute_MissingBinaryOrRuns(t *testing.T) {
	if _, err := exec.LookPath("traceroute"); err != nil {
		_, terr := Traceroute(context.Background(), "127.0.0.1")
		assert.Error(t, terr)
		return
	}
	out, err := Traceroute(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
