package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/modelcard/abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id": "abc", "name": "AlexNet"}`))
	}))
	defer server.Close()

	client := NewClient()
	var body bytes.Buffer
	timing, err := client.Fetch(context.Background(), server.URL+"/modelcard/abc", &body)

	require.NoError(t, err)
	assert.Equal(t, 200, timing.StatusCode)
	assert.Equal(t, `{"id": "abc", "name": "AlexNet"}`, body.String())
	assert.Equal(t, int64(body.Len()), timing.Size)
}

func TestClient_FetchCheckpointsAreOrdered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer server.Close()

	client := NewClient()
	var body bytes.Buffer
	timing, err := client.Fetch(context.Background(), server.URL, &body)
	require.NoError(t, err)

	assert.Greater(t, timing.Connect, time.Duration(0))
	assert.GreaterOrEqual(t, timing.PreTransfer, timing.Connect)
	assert.GreaterOrEqual(t, timing.TTFB, timing.PreTransfer)
	assert.GreaterOrEqual(t, timing.TTFB, 10*time.Millisecond)
	assert.GreaterOrEqual(t, timing.Total, timing.TTFB)
	assert.Equal(t, int64(4096), timing.Size)
}

func TestClient_FetchOpensNewConnectionEachTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient()
	for i := 0; i < 3; i++ {
		var body bytes.Buffer
		timing, err := client.Fetch(context.Background(), server.URL, &body)
		require.NoError(t, err)
		assert.Greater(t, timing.Connect, time.Duration(0), "request %d reused a connection", i+1)
	}
}

func TestClient_FetchNon2xxIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewClient()
	var body bytes.Buffer
	timing, err := client.Fetch(context.Background(), server.URL, &body)

	require.NoError(t, err)
	assert.Equal(t, 500, timing.StatusCode)
	assert.False(t, timing.IsSuccess())
	assert.Equal(t, int64(4), timing.Size)
}

func TestClient_FetchConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient()
	var body bytes.Buffer
	timing, err := client.Fetch(context.Background(), url, &body)

	require.Error(t, err)
	require.NotNil(t, timing)
	assert.Equal(t, time.Duration(0), timing.Connect)
	assert.Equal(t, time.Duration(0), timing.TTFB)
	assert.Equal(t, int64(0), timing.Size)
	assert.Equal(t, 0, timing.StatusCode)
}

func TestClient_WithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithTimeout(50 * time.Millisecond))
	var body bytes.Buffer
	timing, err := client.Fetch(context.Background(), server.URL, &body)

	assert.Error(t, err)
	assert.GreaterOrEqual(t, timing.Total, 50*time.Millisecond)
}

func TestClient_WithDefaultHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("Authorization"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithDefaultHeaders(map[string]string{
		"Authorization": "test-token",
	}))
	var body bytes.Buffer
	timing, err := client.Fetch(context.Background(), server.URL, &body)

	require.NoError(t, err)
	assert.Equal(t, 200, timing.StatusCode)
}

func TestClient_RedirectIsRecordedAsIs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/modelcard/x", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/modelcard/x/")
		w.WriteHeader(http.StatusTemporaryRedirect)
		_, _ = w.Write([]byte("moved"))
	})
	mux.HandleFunc("/modelcard/x/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 5000)))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient()
	var body bytes.Buffer
	timing, err := client.Fetch(context.Background(), server.URL+"/modelcard/x", &body)

	require.NoError(t, err)
	assert.Equal(t, http.StatusTemporaryRedirect, timing.StatusCode)
	assert.Equal(t, int64(len("moved")), timing.Size)
	assert.Equal(t, "moved", body.String())
}

func TestClient_FollowRedirectsOptIn(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/modelcard/x", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/modelcard/x/", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/modelcard/x/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 5000)))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(WithFollowRedirects(true))
	var body bytes.Buffer
	timing, err := client.Fetch(context.Background(), server.URL+"/modelcard/x", &body)

	require.NoError(t, err)
	assert.Equal(t, 200, timing.StatusCode)
	assert.Equal(t, int64(5000), timing.Size)
}

func TestClient_NoFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client := NewClient(WithFollowRedirects(false))
	var body bytes.Buffer
	timing, err := client.Fetch(context.Background(), server.URL+"/redirect", &body)

	require.NoError(t, err)
	assert.Equal(t, 302, timing.StatusCode)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"http://localhost:5002/modelcard/1", false},
		{"https://example.com", false},
		{"ftp://example.com", true},
		{"http://", true},
		{"://bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromSeconds(t *testing.T) {
	timing := FromSeconds(0.123, 0.010, 0.020, 0.080, 0.005, 2048)

	assert.InDelta(t, 0.123, timing.TotalSeconds(), 1e-9)
	assert.InDelta(t, 0.010, timing.DNSLookupSeconds(), 1e-9)
	assert.InDelta(t, 0.020, timing.ConnectSeconds(), 1e-9)
	assert.InDelta(t, 0.080, timing.TTFBSeconds(), 1e-9)
	assert.InDelta(t, 0.005, timing.PreTransferSeconds(), 1e-9)
	assert.Equal(t, int64(2048), timing.Size)
}
