package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestSanitizeLogField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "clean", input: "GET /media", want: "GET /media"},
		{name: "newline", input: "a\nb", want: "a b"},
		{name: "carriage return", input: "a\rb", want: "a b"},
		{name: "null byte", input: "a\x00b", want: "ab"},
		{name: "ansi escape", input: "a\x1b[31mb", want: "a[31mb"},
		{name: "tab preserved", input: "a\tb", want: "a\tb"},
		{name: "control chars", input: "a\x01\x02b", want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := sanitizeLogField(tt.input); got != tt.want {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoggerWritesW3CLine(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/media?category=movies", nil)
	req.Header.Set("User-Agent", "test-agent")
	req.RemoteAddr = "203.0.113.9:4411"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	line := buf.String()
	for _, want := range []string{"203.0.113.9", "GET", "/api/media", "category=movies", "418", "test-agent"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestLoggerSkipsHealthChecks(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	config := DefaultLoggingConfig()
	config.LogHealthChecks = false

	handler := Logger(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if buf.Len() != 0 {
		t.Errorf("health check was logged: %q", buf.String())
	}
}

func TestLoggerSkipPaths(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	config := DefaultLoggingConfig()
	config.SkipPaths = []string{"/quiet"}

	handler := Logger(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/quiet/sub", nil))

	if buf.Len() != 0 {
		t.Errorf("skipped path was logged: %q", buf.String())
	}
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{name: "remote addr", remoteAddr: "192.0.2.1:9999", want: "192.0.2.1"},
		{
			name:       "x-forwarded-for single",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7"},
			want:       "198.51.100.7",
		},
		{
			name:       "x-forwarded-for chain",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.2"},
			want:       "198.51.100.7",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:80",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			want:       "198.51.100.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/api/media", "/api/media"},
		{"/api/media/0b9c8f64-2c7d-4e3a-9a1f-6d2b8c5e7a90/stream", "/api/media/{id}/stream"},
		{"/api/media/0b9c8f64-2c7d-4e3a-9a1f-6d2b8c5e7a90/thumbnail", "/api/media/{id}/thumbnail"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	t.Parallel()

	handler := Metrics(DefaultMetricsConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("made"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/media", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if rec.Body.String() != "made" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestResponseWriterCapturesStatusAndBytes(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusAccepted)
	rw.WriteHeader(http.StatusInternalServerError)
	rw.Write([]byte("12345"))

	if rw.statusCode != http.StatusAccepted {
		t.Errorf("statusCode = %d, want 202", rw.statusCode)
	}
	if rw.bytesWritten != 5 {
		t.Errorf("bytesWritten = %d, want 5", rw.bytesWritten)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("recorded status = %d, want 202", rec.Code)
	}
}
