package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/todolist/todo-api/internal/core/domain"
	"github.com/todolist/todo-api/internal/core/ports"
)

type stubTodoService struct {
	listFn   func(ctx context.Context) ([]*domain.Todo, error)
	createFn func(ctx context.Context, input ports.CreateTodoInput) (*ports.CreateTodoResult, error)
	deleteFn func(ctx context.Context, id, requestID string) error
}

func (s *stubTodoService) ListTodos(ctx context.Context) ([]*domain.Todo, error) {
	return s.listFn(ctx)
}

func (s *stubTodoService) CreateTodo(ctx context.Context, input ports.CreateTodoInput) (*ports.CreateTodoResult, error) {
	return s.createFn(ctx, input)
}

func (s *stubTodoService) DeleteTodo(ctx context.Context, id, requestID string) error {
	return s.deleteFn(ctx, id, requestID)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp["error"]
}

func TestTodoHandler_List_Success(t *testing.T) {
	e := echo.New()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	id := primitive.NewObjectID()
	stub := &stubTodoService{
		listFn: func(ctx context.Context) ([]*domain.Todo, error) {
			return []*domain.Todo{{ID: id, Task: "buy milk", CreatedAt: created, UpdatedAt: created}}, nil
		},
	}
	h := NewTodoHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 todo, got %d", len(resp))
	}
	got := resp[0]
	if got["_id"] != id.Hex() || got["task"] != "buy milk" || got["completed"] != false {
		t.Fatalf("unexpected todo payload: %+v", got)
	}
	if got["createdAt"] != "2024-05-01T10:00:00Z" {
		t.Fatalf("unexpected createdAt: %v", got["createdAt"])
	}
}

func TestTodoHandler_List_EmptyIsArray(t *testing.T) {
	e := echo.New()
	stub := &stubTodoService{
		listFn: func(ctx context.Context) ([]*domain.Todo, error) { return []*domain.Todo{}, nil },
	}
	h := NewTodoHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	rec := httptest.NewRecorder()

	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", rec.Body.String())
	}
}

func TestTodoHandler_List_StorageFailure(t *testing.T) {
	e := echo.New()
	stub := &stubTodoService{
		listFn: func(ctx context.Context) ([]*domain.Todo, error) { return nil, errors.New("connection refused") },
	}
	h := NewTodoHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	rec := httptest.NewRecorder()

	_ = h.List(e.NewContext(req, rec))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Failed to fetch todos" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestTodoHandler_Create_Success(t *testing.T) {
	e := echo.New()
	now := time.Now().UTC()
	stub := &stubTodoService{
		createFn: func(ctx context.Context, input ports.CreateTodoInput) (*ports.CreateTodoResult, error) {
			if input.Task != "  write tests " {
				t.Fatalf("unexpected task %q", input.Task)
			}
			if input.IdempotencyKey != "key-1" || input.RequestID != "req-42" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.CreateTodoResult{Todo: &domain.Todo{
				ID: primitive.NewObjectID(), Task: "write tests", CreatedAt: now, UpdatedAt: now,
			}}, nil
		},
	}
	h := NewTodoHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader(`{"task":"  write tests "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderIdempotencyKey, " key-1 ")
	req.Header.Set(echo.HeaderXRequestID, "req-42")
	rec := httptest.NewRecorder()

	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["task"] != "write tests" || resp["completed"] != false {
		t.Fatalf("unexpected todo payload: %+v", resp)
	}
}

func TestTodoHandler_Create_BlankTask(t *testing.T) {
	for _, body := range []string{`{"task":""}`, `{"task":"   "}`, `{"task":"\ufeff"}`, `{"task":" \ufeff "}`, `{}`, `not-json`} {
		e := echo.New()
		stub := &stubTodoService{
			createFn: func(ctx context.Context, input ports.CreateTodoInput) (*ports.CreateTodoResult, error) {
				t.Fatalf("should not be called for body %s", body)
				return nil, nil
			},
		}
		h := NewTodoHandler(stub, zerolog.Nop())

		req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		_ = h.Create(e.NewContext(req, rec))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
		if msg := decodeError(t, rec); msg != "Task is required and cannot be empty" {
			t.Fatalf("body %s: unexpected message %q", body, msg)
		}
	}
}

func TestTodoHandler_Create_StorageFailure(t *testing.T) {
	e := echo.New()
	stub := &stubTodoService{
		createFn: func(ctx context.Context, input ports.CreateTodoInput) (*ports.CreateTodoResult, error) {
			return nil, errors.New("write concern timeout")
		},
	}
	h := NewTodoHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader(`{"task":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	_ = h.Create(e.NewContext(req, rec))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Failed to add todo" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestTodoHandler_Delete_Success(t *testing.T) {
	e := echo.New()
	id := primitive.NewObjectID().Hex()
	stub := &stubTodoService{
		deleteFn: func(ctx context.Context, got, requestID string) error {
			if got != id {
				t.Fatalf("expected id %s, got %s", id, got)
			}
			return nil
		},
	}
	h := NewTodoHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodDelete, "/api/todos/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/todos/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "Todo deleted successfully" {
		t.Fatalf("unexpected message %q", resp["message"])
	}
}

func TestTodoHandler_Delete_InvalidID(t *testing.T) {
	for _, id := range []string{"abc", "zzzzzzzzzzzzzzzzzzzzzzzz", "507f1f77bcf86cd79943901"} {
		e := echo.New()
		stub := &stubTodoService{
			deleteFn: func(ctx context.Context, id, requestID string) error {
				t.Fatalf("should not be called")
				return nil
			},
		}
		h := NewTodoHandler(stub, zerolog.Nop())

		req := httptest.NewRequest(http.MethodDelete, "/api/todos/"+id, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(id)

		_ = h.Delete(c)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("id %q: expected 400, got %d", id, rec.Code)
		}
		if msg := decodeError(t, rec); msg != "Invalid todo ID" {
			t.Fatalf("id %q: unexpected message %q", id, msg)
		}
	}
}

func TestTodoHandler_Delete_StorageFailure(t *testing.T) {
	e := echo.New()
	stub := &stubTodoService{
		deleteFn: func(ctx context.Context, id, requestID string) error { return errors.New("boom") },
	}
	h := NewTodoHandler(stub, zerolog.Nop())

	id := primitive.NewObjectID().Hex()
	req := httptest.NewRequest(http.MethodDelete, "/api/todos/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	_ = h.Delete(c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Failed to delete todo" {
		t.Fatalf("unexpected message %q", msg)
	}
}
