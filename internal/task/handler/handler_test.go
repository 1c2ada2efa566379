package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"daily-logger/internal/server/middleware"
	"daily-logger/internal/task/domain"
)

type memStore struct {
	mu     sync.Mutex
	tasks  map[int64]domain.Task
	nextID int64
}

func newMemStore() *memStore { return &memStore{tasks: map[int64]domain.Task{}} }

func (m *memStore) Create(ctx context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	m.tasks[t.ID] = *t
	return nil
}

func (m *memStore) GetByID(ctx context.Context, userID, id int64) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return &t, nil
}

func (m *memStore) ListByUser(ctx context.Context, userID int64) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Task
	for id := int64(1); id <= m.nextID; id++ {
		if t, ok := m.tasks[id]; ok && t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) Update(ctx context.Context, t *domain.Task) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return false, nil
	}
	m.tasks[t.ID] = *t
	return true, nil
}

func (m *memStore) Delete(ctx context.Context, userID, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(m.tasks, id)
	return true, nil
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Status     bool            `json:"status"`
	Data       json.RawMessage `json:"data"`
}

func newRouter(store TaskStore) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			var id int64 = 1
			if req.Header.Get("X-Test-User") == "2" {
				id = 2
			}
			next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{UserID: id})))
		})
	})
	r.Route("/api/tasks", NewHandler(store, nil, nil).Routes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return rr.Code, env
}

func TestCreateAndGet(t *testing.T) {
	store := newMemStore()
	h := newRouter(store)

	code, env := do(t, h, http.MethodPost, "/api/tasks", `{"title":" Write ","body":"report","due_date":"2024-03-09"}`)
	if code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d (%s)", code, http.StatusCreated, env.Message)
	}
	if env.Message != "Task created successfully." {
		t.Errorf("message = %q", env.Message)
	}
	var created taskJSON
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Title != "Write" || created.Status != "P" || created.DueDate != "2024-03-09" || created.UserID != 1 {
		t.Errorf("created = %+v", created)
	}

	code, env = do(t, h, http.MethodGet, "/api/tasks/1", "")
	if code != http.StatusOK || env.Message != "Task fetched" {
		t.Fatalf("get: %d %q", code, env.Message)
	}

	code, env = do(t, h, http.MethodGet, "/api/tasks/1", "", "X-Test-User", "2")
	if code != http.StatusNotFound || env.Message != "Task not found" {
		t.Errorf("other user's task: %d %q", code, env.Message)
	}
}

func TestCreate_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		message string
	}{
		{"missing title", `{"body":"b","due_date":"2024-03-09"}`, "All fields are mandatory."},
		{"missing date", `{"title":"a","body":"b"}`, "All fields are mandatory."},
		{"bad date", `{"title":"a","body":"b","due_date":"soon"}`, "Invalid date format."},
		{"bad json", `{`, "All fields are mandatory."},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := do(t, newRouter(newMemStore()), http.MethodPost, "/api/tasks", tc.body)
			if code != http.StatusBadRequest {
				t.Fatalf("unexpected status: got %d want %d", code, http.StatusBadRequest)
			}
			if env.Message != tc.message {
				t.Errorf("message = %q, want %q", env.Message, tc.message)
			}
		})
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	code, env := do(t, newRouter(newMemStore()), http.MethodGet, "/api/tasks", "")
	if code != http.StatusOK || env.Message != "Tasks fetched successfully." {
		t.Fatalf("list: %d %q", code, env.Message)
	}
	if string(env.Data) != "[]" {
		t.Errorf("data = %s, want []", env.Data)
	}
}

func TestUpdate(t *testing.T) {
	store := newMemStore()
	_ = store.Create(context.Background(), &domain.Task{UserID: 1, Title: "Write", Body: "report", Status: domain.StatusPending, DueDate: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)})
	h := newRouter(store)

	code, env := do(t, h, http.MethodPatch, "/api/tasks/1", `{"status":"C"}`)
	if code != http.StatusOK || env.Message != "Task updated successfully." {
		t.Fatalf("update: %d %q", code, env.Message)
	}
	got, _ := store.GetByID(context.Background(), 1, 1)
	if got.Status != domain.StatusCompleted || got.Title != "Write" || got.Body != "report" {
		t.Errorf("stored task = %+v", got)
	}

	testCases := []struct {
		name    string
		path    string
		body    string
		code    int
		message string
	}{
		{"empty patch", "/api/tasks/1", `{}`, http.StatusBadRequest, "No fields to update"},
		{"bad id", "/api/tasks/abc", `{"status":"C"}`, http.StatusBadRequest, "Invalid task id"},
		{"bad status", "/api/tasks/1", `{"status":"Z"}`, http.StatusBadRequest, "Status must be one of P, I or C."},
		{"bad date", "/api/tasks/1", `{"due_date":"never"}`, http.StatusBadRequest, "Invalid date format."},
		{"missing", "/api/tasks/9", `{"status":"C"}`, http.StatusNotFound, "Task not found"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := do(t, h, http.MethodPatch, tc.path, tc.body)
			if code != tc.code {
				t.Fatalf("unexpected status: got %d want %d", code, tc.code)
			}
			if env.Message != tc.message {
				t.Errorf("message = %q, want %q", env.Message, tc.message)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	store := newMemStore()
	_ = store.Create(context.Background(), &domain.Task{UserID: 1, Title: "a", Body: "b", Status: domain.StatusPending, DueDate: time.Now()})
	h := newRouter(store)

	if code, env := do(t, h, http.MethodDelete, "/api/tasks/1", "", "X-Test-User", "2"); code != http.StatusNotFound {
		t.Fatalf("delete by other user: %d %q", code, env.Message)
	}
	code, env := do(t, h, http.MethodDelete, "/api/tasks/1", "")
	if code != http.StatusOK || env.Message != "Task deleted successfully." {
		t.Fatalf("delete: %d %q", code, env.Message)
	}
	if code, _ := do(t, h, http.MethodDelete, "/api/tasks/1", ""); code != http.StatusNotFound {
		t.Errorf("second delete: got %d want %d", code, http.StatusNotFound)
	}
	if code, _ := do(t, h, http.MethodDelete, "/api/tasks/0", ""); code != http.StatusBadRequest {
		t.Errorf("zero id: got %d want %d", code, http.StatusBadRequest)
	}
}
