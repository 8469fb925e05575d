package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/todolist/todo-api/internal/api/metrics"
	"github.com/todolist/todo-api/internal/core/domain"
	"github.com/todolist/todo-api/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry a create without duplicating the todo.
const HeaderIdempotencyKey = "Idempotency-Key"

// TodoHandler handles HTTP requests for todo operations.
type TodoHandler struct {
	service ports.TodoService
	log     zerolog.Logger
}

func NewTodoHandler(service ports.TodoService, log zerolog.Logger) *TodoHandler {
	return &TodoHandler{service: service, log: log}
}

// List handles GET /api/todos.
//
// @Summary      List todos, newest first
// @Tags         todos
// @Produce      json
// @Success      200  {array}   domain.Todo
// @Failure      500  {object}  errorResponse
// @Router       /api/todos [get]
func (h *TodoHandler) List(c echo.Context) error {
	todos, err := h.service.ListTodos(c.Request().Context())
	if err != nil {
		h.logFailure(c, err, "list todos failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgFetchFailed})
	}
	return c.JSON(http.StatusOK, todos)
}

// Create handles POST /api/todos.
//
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string             false  "Key that makes retries return the first result"
// @Param        body             body      createTodoRequest  true   "Todo to create"
// @Success      201              {object}  domain.Todo
// @Failure      400              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /api/todos [post]
func (h *TodoHandler) Create(c echo.Context) error {
	var req createTodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgTaskRequired})
	}
	if domain.TrimTask(req.Task) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgTaskRequired})
	}

	res, err := h.service.CreateTodo(c.Request().Context(), ports.CreateTodoInput{
		Task:           req.Task,
		IdempotencyKey: strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey)),
		RequestID:      requestID(c),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyTask) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgTaskRequired})
		}
		h.logFailure(c, err, "create todo failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgAddFailed})
	}

	metrics.TodosCreatedTotal.WithLabelValues(strconv.FormatBool(res.Replayed)).Inc()
	return c.JSON(http.StatusCreated, res.Todo)
}

// Delete handles DELETE /api/todos/:id. Unknown ids are reported as deleted.
//
// @Summary      Delete a todo
// @Tags         todos
// @Produce      json
// @Param        id   path      string  true  "Todo ObjectID (24 hex characters)"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/todos/{id} [delete]
func (h *TodoHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if _, err := domain.ParseTodoID(id); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidID})
	}

	if err := h.service.DeleteTodo(c.Request().Context(), id, requestID(c)); err != nil {
		if errors.Is(err, domain.ErrInvalidTodoID) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidID})
		}
		h.logFailure(c, err, "delete todo failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgDeleteFailed})
	}

	metrics.TodosDeletedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msgDeleted})
}

func (h *TodoHandler) logFailure(c echo.Context, err error, msg string) {
	h.log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", requestID(c)).
		Msg(msg)
}
