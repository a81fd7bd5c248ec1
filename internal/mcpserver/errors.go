package mcpserver

import (
	"errors"
	"fmt"

	"github.com/vectra-go/vectra/internal/vecerr"
)

// Standard JSON-RPC error codes, plus one vectra-specific code for vecerr's
// not-found kind. Every other vecerr kind maps to the internal-error code.
const (
	errCodeInvalidParams = -32602
	errCodeInternalError = -32603
	errCodeNotFound      = -32001
)

// MCPError is an MCP protocol error with a JSON-RPC code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

func newInvalidParamsError(message string) error {
	return &MCPError{Code: errCodeInvalidParams, Message: message}
}

// mapError converts a vecerr-classified error into an MCPError, falling
// back to a generic internal error for anything else.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}
	if kind, ok := vecerr.KindOf(err); ok && kind == vecerr.NotFound {
		return &MCPError{Code: errCodeNotFound, Message: err.Error()}
	}
	return &MCPError{Code: errCodeInternalError, Message: err.Error()}
}
