// Web Access Tools.
//
// Information Hiding:
// - HTTP client implementation details hidden
// - HTML-to-text extraction abstracted
// - Domain allowlist checking internalized

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const fetchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxFetchedTextLen caps the text returned to the model from a page.
const maxFetchedTextLen = 5000

// maxDownloadBytes caps file downloads.
const maxDownloadBytes = 100 * 1024 * 1024

var whitespaceRe = regexp.MustCompile(`\s+`)

// validateURL checks the URL has a scheme and host.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid URL format: %q", raw)
	}
	return nil
}

// FetchURLTool fetches a URL and returns its content, with HTML reduced
// to readable text.
type FetchURLTool struct {
	BaseTool
	client         *http.Client
	timeoutSecs    uint64
	allowedDomains []string
}

// NewFetchURLTool creates a new URL fetch tool with the given timeout.
func NewFetchURLTool(timeoutSecs uint64) *FetchURLTool {
	return &FetchURLTool{
		client: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		timeoutSecs: timeoutSecs,
	}
}

// WithAllowedDomains sets the allowed domains for requests.
func (t *FetchURLTool) WithAllowedDomains(domains []string) *FetchURLTool {
	t.allowedDomains = domains
	return t
}

// Metadata returns the tool metadata.
func (t *FetchURLTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "fetch_url",
		Description: "Fetch content from a URL. HTML pages are reduced to readable text; JSON and plain text are returned as-is.",
		Parameters: []ToolParameter{
			{Name: "url", ParamType: "string", Description: "The URL to fetch", Required: true},
			{Name: "method", ParamType: "string", Description: "HTTP method (GET or POST)", Required: false},
			{Name: "body", ParamType: "string", Description: "Request body for POST requests", Required: false},
		},
	}
}

type fetchURLArgs struct {
	URL    string `json:"url"`
	Method string `json:"method"`
	Body   string `json:"body"`
}

// Validate validates the arguments.
func (t *FetchURLTool) Validate(args json.RawMessage) error {
	var a fetchURLArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.URL == "" {
		return fmt.Errorf("url cannot be empty")
	}
	return nil
}

// Execute fetches the URL.
func (t *FetchURLTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a fetchURLArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.URL == "" {
		return FailureResultf(KindInvalidArgs, "url cannot be empty"), nil
	}
	if err := validateURL(a.URL); err != nil {
		return FailureResultf(KindInvalidArgs, "%v", err), nil
	}
	if !t.isDomainAllowed(a.URL) {
		return FailureResultf(KindBlocked, "access to domain in %q is not allowed", a.URL), nil
	}

	method := strings.ToUpper(a.Method)
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet && method != http.MethodPost {
		return FailureResultf(KindInvalidArgs, "only GET and POST methods are supported"), nil
	}

	var reqBody io.Reader
	if method == http.MethodPost {
		reqBody = strings.NewReader(a.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.URL, reqBody)
	if err != nil {
		return FailureResultf(KindInvalidArgs, "failed to create request: %v", err), nil
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || isTimeout(err) {
			return FailureResultf(KindTimedOut, "request to %q timed out after %d seconds", a.URL, t.timeoutSecs), nil
		}
		return FailureResultf(KindAgentError, "could not connect to %q: %v", a.URL, err), nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return FailureResultf(KindAgentError, "failed to read response body: %v", err), nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return FailureResultf(KindAgentError, "HTTP error %d when accessing %q", resp.StatusCode, a.URL), nil
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	switch {
	case strings.Contains(contentType, "text/html"):
		text, err := extractText(raw)
		if err != nil {
			return FailureResultf(KindDecodeError, "failed to parse HTML from %q: %v", a.URL, err), nil
		}
		return SuccessResultf("Successfully read from URL: %s\nContent-Type: %s\n\nContent:\n%s",
			a.URL, contentType, capText(text)), nil
	case strings.Contains(contentType, "application/json"):
		return SuccessResultf("Successfully read JSON from URL: %s\n\nContent:\n%s", a.URL, string(raw)), nil
	case strings.Contains(contentType, "text/"):
		return SuccessResultf("Successfully read text from URL: %s\nContent-Type: %s\n\nContent:\n%s",
			a.URL, contentType, capText(string(raw))), nil
	default:
		return SuccessResultf("Successfully accessed URL: %s\nContent-Type: %s\nContent-Length: %d bytes\nNote: Binary content not displayed",
			a.URL, contentType, len(raw)), nil
	}
}

// isDomainAllowed checks if the URL's domain is in the allowlist.
// Uses proper URL parsing to prevent bypass attacks.
func (t *FetchURLTool) isDomainAllowed(urlStr string) bool {
	if len(t.allowedDomains) == 0 {
		return true
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	host := u.Hostname()
	for _, domain := range t.allowedDomains {
		// Exact match or subdomain match
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// extractText strips scripts, styles and markup from an HTML document
// and collapses whitespace. Text nodes are joined with a space so
// adjacent elements do not run together.
func extractText(raw []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return whitespaceRe.ReplaceAllString(strings.Join(parts, " "), " "), nil
}

// capText truncates page text to the model-facing limit.
func capText(s string) string {
	if len(s) > maxFetchedTextLen {
		return s[:maxFetchedTextLen] + "... [Content truncated]"
	}
	return s
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeouter); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}

// DownloadFileTool downloads a URL to a local file.
type DownloadFileTool struct {
	BaseTool
	client      *http.Client
	timeoutSecs uint64
}

// NewDownloadFileTool creates a new download tool with the given timeout.
func NewDownloadFileTool(timeoutSecs uint64) *DownloadFileTool {
	return &DownloadFileTool{
		client: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		timeoutSecs: timeoutSecs,
	}
}

// Metadata returns the tool metadata.
func (t *DownloadFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "download_file",
		Description: "Download a file from a URL to a local path",
		Parameters: []ToolParameter{
			{Name: "url", ParamType: "string", Description: "URL to download from", Required: true},
			{Name: "local_path", ParamType: "string", Description: "Local path to save the file", Required: true},
		},
	}
}

type downloadFileArgs struct {
	URL       string `json:"url"`
	LocalPath string `json:"local_path"`
}

// Validate validates the arguments.
func (t *DownloadFileTool) Validate(args json.RawMessage) error {
	var a downloadFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.URL == "" || a.LocalPath == "" {
		return fmt.Errorf("url and local_path cannot be empty")
	}
	return nil
}

// Execute downloads the file.
func (t *DownloadFileTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a downloadFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResultf(KindInvalidArgs, "invalid arguments: %v", err), nil
	}
	if a.URL == "" || a.LocalPath == "" {
		return FailureResultf(KindInvalidArgs, "url and local_path cannot be empty"), nil
	}
	if err := validateURL(a.URL); err != nil {
		return FailureResultf(KindInvalidArgs, "%v", err), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return FailureResultf(KindInvalidArgs, "failed to create request: %v", err), nil
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || isTimeout(err) {
			return FailureResultf(KindTimedOut, "download from %q timed out after %d seconds", a.URL, t.timeoutSecs), nil
		}
		return FailureResultf(KindAgentError, "could not connect to %q: %v", a.URL, err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return FailureResultf(KindAgentError, "HTTP error %d when downloading from %q", resp.StatusCode, a.URL), nil
	}
	if resp.ContentLength > maxDownloadBytes {
		return FailureResultf(KindInvalidArgs, "file too large (%.1f MB), maximum allowed: 100 MB",
			float64(resp.ContentLength)/(1024*1024)), nil
	}

	if err := os.MkdirAll(filepath.Dir(a.LocalPath), 0755); err != nil {
		return FailureResultf(KindPermissionDenied, "failed to create directory: %v", err), nil
	}

	f, err := os.Create(a.LocalPath)
	if err != nil {
		if os.IsPermission(err) {
			return FailureResultf(KindPermissionDenied, "permission denied to write file %q", a.LocalPath), nil
		}
		return FailureResultf(KindAgentError, "failed to create file: %v", err), nil
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return FailureResultf(KindAgentError, "failed to save download: %v", err), nil
	}

	return SuccessResultf("Successfully downloaded file from %q to %q\nSize: %s", a.URL, a.LocalPath, formatSize(written)), nil
}

// formatSize renders a byte count for humans.
func formatSize(n int64) string {
	switch {
	case n > 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n > 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
