package api

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d1childress/neoTUI/ports"
)

// Server bundles dependencies for HTTP handlers.
type Server struct {
	store TaskStore
}

// NewServer creates a new API server instance.
func NewServer(store TaskStore) *Server {
	return &Server{store: store}
}

// RegisterRoutes attaches handlers to the provided route group.
func (s *Server) RegisterRoutes(routes gin.IRoutes) {
	routes.POST("/scans", s.createScanHandler)
	routes.GET("/scans/:id", s.getScanHandler)
}

var uuidV4Pattern = regexp.MustCompile(`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-4[a-fA-F0-9]{3}-[ab89AB][a-fA-F0-9]{3}-[a-fA-F0-9]{12}$`)

// @Summary      Create a new scan task
// @Description  Submit a scan definition and let neoTUI execute it asynchronously. The handler validates the port expression up front — a malformed spec is rejected with 400 before any network activity — then persists the task and enqueues it for background workers.
// @Description  **Lifecycle**: the call answers immediately with HTTP 202 Accepted plus the task identifier. Poll GET /scans/{id} to observe status transitions (pending → running → completed/failed). The report is attached only after completion.
// @Tags         Scans
// @Accept       json
// @Produce      json
// @Param        scanRequest  body      CreateScanRequest     true  "Scan request parameters"
// @Success      202          {object}  ScanAcceptedResponse  "Scan accepted. Poll GET /scans/{id} to track progress."
// @Failure      400          {object}  ErrorResponse         "Malformed JSON body, failed validation, or invalid port spec."
// @Failure      401          {object}  ErrorResponse         "Missing or incorrect API key."
// @Failure      429          {object}  ErrorResponse         "Rate limit exceeded for the calling client."
// @Failure      500          {object}  ErrorResponse         "Internal error while persisting or queueing the task."
// @Security     ApiKeyAuth
// @Router       /scans [post]
func (s *Server) createScanHandler(c *gin.Context) {
	var req CreateScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request payload: %v", err)})
		return
	}

	// Fail fast on a bad port expression: no probe is issued for it.
	if _, err := ports.Parse(req.Ports); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	taskID, err := generateUUID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate task id"})
		return
	}

	task := &ScanTask{
		ID:        taskID,
		Status:    StatusPending,
		Host:      req.Host,
		Ports:     req.Ports,
		TimeoutMS: req.TimeoutMS,
		Workers:   req.Workers,
		CreatedAt: time.Now().UTC(),
	}

	ctx := c.Request.Context()
	if err := s.store.CreateTask(ctx, task); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to persist task"})
		return
	}

	if err := s.store.PushToQueue(ctx, task.ID); err != nil {
		task.Status = StatusFailed
		task.Error = "failed to queue task"
		now := time.Now().UTC()
		task.CompletedAt = &now
		_ = s.store.UpdateTask(ctx, task)

		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to queue task"})
		return
	}

	c.JSON(http.StatusAccepted, ScanAcceptedResponse{ID: task.ID, Status: task.Status})
}

// @Summary      Get scan status and report
// @Description  Retrieve a live snapshot of a scan task. Supply the UUID obtained from POST /scans and poll until the lifecycle reaches completed. While pending or running the response carries metadata only; once completed, the report holds every outcome plus sorted open ports.
// @Tags         Scans
// @Produce      json
// @Param        id   path      string         true  "Scan Task ID (UUID v4)"
// @Success      200  {object}  ScanTask       "Current task snapshot, report attached when completed."
// @Failure      400  {object}  ErrorResponse  "Malformed task identifier."
// @Failure      401  {object}  ErrorResponse  "Missing or incorrect API key."
// @Failure      404  {object}  ErrorResponse  "Unknown task identifier."
// @Failure      500  {object}  ErrorResponse  "Internal error while loading the task."
// @Security     ApiKeyAuth
// @Router       /scans/{id} [get]
func (s *Server) getScanHandler(c *gin.Context) {
	id := c.Param("id")
	if !uuidV4Pattern.MatchString(id) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task id format"})
		return
	}

	task, err := s.store.GetTask(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load task"})
		return
	}

	c.JSON(http.StatusOK, task)
}

func generateUUID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// Variant bits; version 4 UUID.
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16]), nil
}
