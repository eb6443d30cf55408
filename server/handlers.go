// HTTP handlers for the website-generation wizard.
//
// Information Hiding:
// - Agent turn execution hidden behind TurnRunner
// - Mail transport hidden behind Mailer
// - Per-request session construction encapsulated

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/webwright/webwright/session"
)

const (
	wizardUserID      = "wizard_user"
	wizardDisplayName = "Wizard User"

	mailSubject = "Your AI-Generated Website"
	mailBody    = "Attached is your generated website as a zip file. Thank you for using our service!"
)

// TurnRunner runs one conversation turn against a session.
type TurnRunner interface {
	RunTurn(ctx context.Context, state *session.State, userMessage string) string
}

// Handlers holds the wizard backend's HTTP handlers.
type Handlers struct {
	runner       TurnRunner
	generatorDir string
	mailer       Mailer
}

// NewHandlers creates handlers that run agent turns against generatorDir.
func NewHandlers(runner TurnRunner, generatorDir string) *Handlers {
	return &Handlers{
		runner:       runner,
		generatorDir: generatorDir,
	}
}

// WithMailer enables the send-zip endpoint.
func (h *Handlers) WithMailer(m Mailer) *Handlers {
	h.mailer = m
	return h
}

// NewRouter builds the gin router for the wizard backend.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/generate", h.Generate)
		api.POST("/download", h.Download)
		api.POST("/send-zip", h.SendZip)
	}
	return router
}

// Generate runs one agent turn with the wizard's form data as the user
// message. Each request gets a fresh session rooted in the generator
// directory.
func (h *Handlers) Generate(c *gin.Context) {
	var form map[string]interface{}
	if err := c.BindJSON(&form); err != nil || len(form) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "No JSON data received.",
		})
		return
	}

	userInput, err := json.Marshal(form)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "No JSON data received.",
		})
		return
	}

	workingDir, err := filepath.Abs(h.generatorDir)
	if err != nil {
		workingDir = h.generatorDir
	}

	state := session.New(session.UserContext{
		UserID:           wizardUserID,
		SessionID:        uuid.NewString(),
		DisplayName:      wizardDisplayName,
		WorkingDirectory: workingDir,
	})

	slog.Info("wizard generation started",
		"session", state.User.SessionID,
		"working_dir", workingDir)

	response := h.runner.RunTurn(c.Request.Context(), state, string(userInput))

	status := "success"
	httpStatus := http.StatusOK
	if state.ErrorInfo != nil {
		status = "error"
		httpStatus = http.StatusInternalServerError
		slog.Error("wizard generation failed",
			"session", state.User.SessionID,
			"error", state.ErrorInfo.Message)
	}

	c.JSON(httpStatus, gin.H{
		"status":      status,
		"message":     response,
		"output_path": workingDir,
		"session_id":  state.User.SessionID,
	})
}

// Download streams the generator directory as a zip archive.
func (h *Handlers) Download(c *gin.Context) {
	archive, err := zipDirectory(h.generatorDir)
	if err != nil {
		slog.Error("site archive failed", "dir", h.generatorDir, "error", err)
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	filename := filepath.Base(filepath.Clean(h.generatorDir)) + ".zip"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/zip", archive)
}

// SendZipRequest is the payload for the send-zip endpoint.
type SendZipRequest struct {
	Email      string `json:"email"`
	OutputPath string `json:"output_path"`
}

// SendZip zips the output directory and emails it to the requester.
func (h *Handlers) SendZip(c *gin.Context) {
	var req SendZipRequest
	if err := c.BindJSON(&req); err != nil || req.Email == "" || req.OutputPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Missing email or output_path.",
		})
		return
	}

	if h.mailer == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "SMTP credentials not set in environment.",
		})
		return
	}

	archive, err := zipDirectory(req.OutputPath)
	if err != nil {
		slog.Error("site archive failed", "dir", req.OutputPath, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	filename := filepath.Base(filepath.Clean(req.OutputPath)) + ".zip"
	if err := h.mailer.SendZip(req.Email, mailSubject, mailBody, filename, archive); err != nil {
		slog.Error("mail delivery failed", "to", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	slog.Info("site delivered", "to", req.Email, "archive", filename)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Zip file sent to " + req.Email + ".",
	})
}
