package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/target/shortener/internal/errors"
	"github.com/target/shortener/internal/lifecycle"
)

// ErrorFunnelOptions configures an ErrorFunnel.
type ErrorFunnelOptions struct {
	Logger *slog.Logger
	// Trigger is called for unclassified errors and panics.
	Trigger lifecycle.TriggerFunc
}

// ErrorFunnel turns every request error into a response. Structured errors are written as is;
// anything else gets a generic 500 and arms shutdown.
type ErrorFunnel struct {
	logger  *slog.Logger
	trigger lifecycle.TriggerFunc
}

// NewErrorFunnel creates an ErrorFunnel. A nil Trigger only logs.
func NewErrorFunnel(opts ErrorFunnelOptions) *ErrorFunnel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	trigger := opts.Trigger
	if trigger == nil {
		trigger = func(string, error) {}
	}
	return &ErrorFunnel{logger: logger.With("component", "error_funnel"), trigger: trigger}
}

// Handle writes the response for err.
func (f *ErrorFunnel) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	if appErr, ok := apperrors.Structured(err); ok {
		writeStructured(w, appErr)
		return
	}
	f.escalate(w, r, "unhandled request error", err)
}

// Panic handles a value recovered from a handler panic.
func (f *ErrorFunnel) Panic(w http.ResponseWriter, r *http.Request, recovered any, stack []byte) {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", recovered)
	}
	f.logger.ErrorContext(r.Context(), "panic",
		"request_id", middleware.GetReqID(r.Context()),
		"stack", string(stack),
	)
	f.escalate(w, r, "request panic", err)
}

// NotFound answers requests that match no route.
func (f *ErrorFunnel) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeStructured(w, apperrors.NotFound(msgEndpointNotFound))
}

// MethodNotAllowed answers requests whose path matches but whose method does not.
func (f *ErrorFunnel) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeStructured(w, &apperrors.AppError{
		Code:        apperrors.ErrCodeValidation,
		Status:      http.StatusMethodNotAllowed,
		Message:     "method not allowed",
		Description: fmt.Sprintf("%s is not supported on %s", r.Method, r.URL.Path),
	})
}

func (f *ErrorFunnel) escalate(w http.ResponseWriter, r *http.Request, reason string, err error) {
	WriteJSON(w, http.StatusInternalServerError, ErrorBody{
		Code:    http.StatusInternalServerError,
		Message: msgInternal,
	})

	f.logger.ErrorContext(r.Context(), reason,
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)

	if errors.Is(err, http.ErrAbortHandler) {
		return
	}
	// Let the response flush before teardown starts.
	go f.trigger(reason, err)
}

func writeStructured(w http.ResponseWriter, appErr *apperrors.AppError) {
	status := appErr.HTTPStatus()
	WriteJSON(w, status, ErrorBody{
		Code:        status,
		Message:     appErr.Message,
		Description: appErr.Description,
	})
}
