package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: "127.0.0.1:8000"},
		{raw: "garbage", want: "127.0.0.1:8000"},
		{raw: "0.0.0.0:9000", want: "127.0.0.1:9000"},
		{raw: ":9000", want: "127.0.0.1:9000"},
		{raw: "[::]:9000", want: "127.0.0.1:9000"},
		{raw: "10.0.0.5:8000", want: "10.0.0.5:8000"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAddr(tt.raw))
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   int
	}{
		{name: "healthy", status: http.StatusOK, body: `{"status":"ok","database":"ok"}`, want: 0},
		{name: "degraded", status: http.StatusServiceUnavailable, body: `{"status":"degraded"}`, want: 1},
		{name: "wrong status field", status: http.StatusOK, body: `{"status":"starting"}`, want: 1},
		{name: "not json", status: http.StatusOK, body: `ok`, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			assert.Equal(t, tt.want, check(strings.TrimPrefix(srv.URL, "http://")))
		})
	}
}

func TestCheck_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	assert.Equal(t, 1, check(addr))
}
