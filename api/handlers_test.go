package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1childress/neoTUI/scanner"
)

// memStore is an in-memory TaskStore for handler tests.
type memStore struct {
	mu    sync.Mutex
	tasks map[string]*ScanTask
	queue chan string
}

func newMemStore() *memStore {
	return &memStore{tasks: make(map[string]*ScanTask), queue: make(chan string, 16)}
}

func (m *memStore) CreateTask(ctx context.Context, task *ScanTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *task
	m.tasks[task.ID] = &clone
	return nil
}

func (m *memStore) GetTask(ctx context.Context, id string) (*ScanTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (m *memStore) UpdateTask(ctx context.Context, task *ScanTask) error {
	return m.CreateTask(ctx, task)
}

func (m *memStore) PushToQueue(ctx context.Context, taskID string) error {
	m.queue <- taskID
	return nil
}

func (m *memStore) PopFromQueue(ctx context.Context) (string, error) {
	select {
	case id := <-m.queue:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newTestRouter(store TaskStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewServer(store).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postScan(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateScan_Accepted(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	w := postScan(t, router, CreateScanRequest{Host: "127.0.0.1", Ports: "20-25"})
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp ScanAcceptedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusPending, resp.Status)
	assert.Regexp(t, uuidV4Pattern, resp.ID)

	task, err := store.GetTask(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "20-25", task.Ports)

	queued, err := store.PopFromQueue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, resp.ID, queued)
}

func TestCreateScan_InvalidPortSpec(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := postScan(t, router, CreateScanRequest{Host: "127.0.0.1", Ports: "80000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postScan(t, router, CreateScanRequest{Host: "127.0.0.1", Ports: "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateScan_MissingFields(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := postScan(t, router, map[string]string{"ports": "22"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postScan(t, router, map[string]string{"host": "example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetScan_NotFound(t *testing.T) {
	router := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/a3f5c62e-1234-4f72-a84a-1c2d3e4f5678", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetScan_BadID(t *testing.T) {
	router := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetScan_CompletedTaskCarriesReport(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	now := time.Now().UTC()
	task := &ScanTask{
		ID:          "a3f5c62e-1234-4f72-a84a-1c2d3e4f5678",
		Status:      StatusCompleted,
		Host:        "127.0.0.1",
		Ports:       "22",
		CreatedAt:   now,
		CompletedAt: &now,
		Report: scanner.Aggregate([]scanner.Outcome{
			{Port: 22, State: scanner.StateOpen, Service: "SSH"},
		}, 1),
	}
	require.NoError(t, store.CreateTask(context.Background(), task))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scans/"+task.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got ScanTask
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.Report)
	require.Len(t, got.Report.Open, 1)
	assert.Equal(t, "SSH", got.Report.Open[0].Service)
}

func TestWorkerLoop_ProcessesTask(t *testing.T) {
	store := newMemStore()

	task := &ScanTask{
		ID:        "b4e6d73f-5678-4a83-b95b-2d3e4f5a6b7c",
		Status:    StatusPending,
		Host:      "127.0.0.1",
		Ports:     "1",
		TimeoutMS: 100,
		Workers:   1,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateTask(context.Background(), task))
	require.NoError(t, store.PushToQueue(context.Background(), task.ID))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go workerLoop(ctx, store, TaskDefaults{Timeout: 100 * time.Millisecond, Workers: 4})

	require.Eventually(t, func() bool {
		got, err := store.GetTask(context.Background(), task.ID)
		return err == nil && got.Status == StatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	got, err := store.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Report)
	assert.Equal(t, 1, got.Report.TotalRequested)
	assert.True(t, got.Report.Complete())
	require.NotNil(t, got.CompletedAt)
}

func TestWorkerLoop_BadSpecFailsTask(t *testing.T) {
	store := newMemStore()

	task := &ScanTask{
		ID:        "c5f7e84a-9abc-4b94-8a6c-3e4f5a6b7c8d",
		Status:    StatusPending,
		Host:      "127.0.0.1",
		Ports:     "0-100",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateTask(context.Background(), task))
	require.NoError(t, store.PushToQueue(context.Background(), task.ID))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go workerLoop(ctx, store, TaskDefaults{Timeout: 100 * time.Millisecond, Workers: 4})

	require.Eventually(t, func() bool {
		got, err := store.GetTask(context.Background(), task.ID)
		return err == nil && got.Status == StatusFailed
	}, 5*time.Second, 20*time.Millisecond)

	got, err := store.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Error, "out of range")
	assert.Nil(t, got.Report)
}
