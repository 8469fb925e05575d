package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is returned by operations that have no resource to echo back.
type messageResponse struct {
	Message string `json:"message"`
}

type createTodoRequest struct {
	Task string `json:"task"`
}

// Messages shared with the web client; kept stable.
const (
	msgFetchFailed  = "Failed to fetch todos"
	msgTaskRequired = "Task is required and cannot be empty"
	msgAddFailed    = "Failed to add todo"
	msgInvalidID    = "Invalid todo ID"
	msgDeleted      = "Todo deleted successfully"
	msgDeleteFailed = "Failed to delete todo"
)
