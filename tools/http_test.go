package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newFetchServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><style>body{}</style><script>var x=1;</script></head>` +
			`<body><h1>Menu</h1><p>Fresh   pasta   daily</p></body></html>`))
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"open":true}`))
	})
	mux.HandleFunc("/logo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetchURLExtractsHTMLText(t *testing.T) {
	server := newFetchServer(t)
	tool := NewFetchURLTool(5)

	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{
		"url": server.URL + "/page",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success() {
		t.Fatalf("Execute() failed: %v", result.Error)
	}
	if !strings.Contains(result.Output, "Menu Fresh pasta daily") {
		t.Errorf("whitespace not collapsed: %q", result.Output)
	}
	if strings.Contains(result.Output, "var x=1") {
		t.Errorf("script content leaked: %q", result.Output)
	}
}

func TestFetchURLReturnsJSONRaw(t *testing.T) {
	server := newFetchServer(t)
	tool := NewFetchURLTool(5)

	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{
		"url": server.URL + "/data",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(result.Output, `{"open":true}`) {
		t.Errorf("Output = %q", result.Output)
	}
}

func TestFetchURLBinaryMetadataOnly(t *testing.T) {
	server := newFetchServer(t)
	tool := NewFetchURLTool(5)

	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{
		"url": server.URL + "/logo",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(result.Output, "Binary content not displayed") {
		t.Errorf("Output = %q", result.Output)
	}
	if !strings.Contains(result.Output, "4 bytes") {
		t.Errorf("Output = %q", result.Output)
	}
}

func TestFetchURLDomainAllowlist(t *testing.T) {
	server := newFetchServer(t)
	tool := NewFetchURLTool(5).WithAllowedDomains([]string{"example.com"})

	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{
		"url": server.URL + "/page",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success() {
		t.Fatal("disallowed domain should be blocked")
	}
	if result.Kind() != KindBlocked {
		t.Errorf("Kind() = %q, want blocked", result.Kind())
	}
}

func TestFetchURLRejectsBadMethodAndURL(t *testing.T) {
	tool := NewFetchURLTool(5)

	result, _ := tool.Execute(context.Background(), rawArgs(t, map[string]any{
		"url":    "http://example.com",
		"method": "DELETE",
	}))
	if result.Kind() != KindInvalidArgs {
		t.Errorf("DELETE: Kind() = %q, want invalid_args", result.Kind())
	}

	result, _ = tool.Execute(context.Background(), rawArgs(t, map[string]any{
		"url": "not-a-url",
	}))
	if result.Kind() != KindInvalidArgs {
		t.Errorf("bad url: Kind() = %q, want invalid_args", result.Kind())
	}
}

func TestDownloadFileSavesToNestedPath(t *testing.T) {
	server := newFetchServer(t)
	tool := NewDownloadFileTool(5)

	target := filepath.Join(t.TempDir(), "assets", "img", "logo.png")
	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{
		"url":        server.URL + "/logo",
		"local_path": target,
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Success() {
		t.Fatalf("Execute() failed: %v", result.Error)
	}
	if !strings.Contains(result.Output, "4 bytes") {
		t.Errorf("Output = %q", result.Output)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	if len(data) != 4 {
		t.Errorf("got %d bytes, want 4", len(data))
	}
}

func TestDownloadFileHTTPError(t *testing.T) {
	server := newFetchServer(t)
	tool := NewDownloadFileTool(5)

	result, err := tool.Execute(context.Background(), rawArgs(t, map[string]any{
		"url":        server.URL + "/missing",
		"local_path": filepath.Join(t.TempDir(), "out.bin"),
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Success() {
		t.Fatal("404 download should fail")
	}
	if !strings.Contains(result.Error.Error(), "HTTP error 404") {
		t.Errorf("error = %v", result.Error)
	}
}
