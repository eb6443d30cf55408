package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webwright/webwright/session"
)

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

// fakeRunner returns a canned response and optionally marks the turn as
// failed.
type fakeRunner struct {
	response string
	fail     bool
	lastMsg  string
	lastDir  string
}

func (f *fakeRunner) RunTurn(ctx context.Context, state *session.State, userMessage string) string {
	f.lastMsg = userMessage
	f.lastDir = state.User.WorkingDirectory
	if f.fail {
		state.Apply(session.Update{ErrorInfo: &session.ErrorInfo{
			Message:   "model unavailable",
			Kind:      "agent_error",
			Timestamp: time.Now(),
		}})
	}
	return f.response
}

// fakeMailer records the last delivery.
type fakeMailer struct {
	to       string
	filename string
	archive  []byte
	err      error
}

func (f *fakeMailer) SendZip(to, subject, body, filename string, archive []byte) error {
	f.to = to
	f.filename = filename
	f.archive = archive
	return f.err
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateSuccess(t *testing.T) {
	runner := &fakeRunner{response: "Site created."}
	router := NewRouter(NewHandlers(runner, t.TempDir()))

	w := performRequest(router, "POST", "/api/generate", map[string]string{
		"business_name": "Acme Bistro",
		"style":         "modern",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "success", response["status"])
	assert.Equal(t, "Site created.", response["message"])
	assert.NotEmpty(t, response["output_path"])
	assert.NotEmpty(t, response["session_id"])

	// The wizard form reaches the agent as the user message.
	assert.Contains(t, runner.lastMsg, "Acme Bistro")
}

func TestGenerateEmptyBody(t *testing.T) {
	runner := &fakeRunner{response: "unused"}
	router := NewRouter(NewHandlers(runner, t.TempDir()))

	w := performRequest(router, "POST", "/api/generate", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "error", response["status"])
	assert.Equal(t, "No JSON data received.", response["message"])
}

func TestGenerateAgentError(t *testing.T) {
	runner := &fakeRunner{response: "I encountered an error.", fail: true}
	router := NewRouter(NewHandlers(runner, t.TempDir()))

	w := performRequest(router, "POST", "/api/generate", map[string]string{"name": "x"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "error", response["status"])
}

func TestDownloadReturnsArchive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "style.css"), []byte("body{}"), 0644))

	runner := &fakeRunner{}
	router := NewRouter(NewHandlers(runner, dir))

	w := performRequest(router, "POST", "/api/download", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".zip")

	reader, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range reader.File {
		names[f.Name] = true
	}
	assert.True(t, names["index.html"])
	assert.True(t, names["css/style.css"])
}

func TestDownloadMissingDirectory(t *testing.T) {
	runner := &fakeRunner{}
	router := NewRouter(NewHandlers(runner, "/nonexistent/generator"))

	w := performRequest(router, "POST", "/api/download", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendZipDeliversArchive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0644))

	runner := &fakeRunner{}
	mailer := &fakeMailer{}
	router := NewRouter(NewHandlers(runner, dir).WithMailer(mailer))

	w := performRequest(router, "POST", "/api/send-zip", SendZipRequest{
		Email:      "owner@example.com",
		OutputPath: dir,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "success", response["status"])
	assert.Equal(t, "Zip file sent to owner@example.com.", response["message"])

	assert.Equal(t, "owner@example.com", mailer.to)
	assert.Contains(t, mailer.filename, ".zip")
	assert.NotEmpty(t, mailer.archive)
}

func TestSendZipMissingFields(t *testing.T) {
	runner := &fakeRunner{}
	router := NewRouter(NewHandlers(runner, t.TempDir()).WithMailer(&fakeMailer{}))

	w := performRequest(router, "POST", "/api/send-zip", SendZipRequest{Email: "owner@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Missing email or output_path.", response["message"])
}

func TestSendZipWithoutMailer(t *testing.T) {
	runner := &fakeRunner{}
	router := NewRouter(NewHandlers(runner, t.TempDir()))

	w := performRequest(router, "POST", "/api/send-zip", SendZipRequest{
		Email:      "owner@example.com",
		OutputPath: t.TempDir(),
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "SMTP credentials not set in environment.", response["message"])
}

func TestHealth(t *testing.T) {
	router := NewRouter(NewHandlers(&fakeRunner{}, t.TempDir()))

	w := performRequest(router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
