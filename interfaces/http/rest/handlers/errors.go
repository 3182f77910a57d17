package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"brain2-canvas/pkg/common"
	pkgerrors "brain2-canvas/pkg/errors"
)

// ErrorWriter renders canvas errors into the response envelope
type ErrorWriter struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorWriter creates an error writer. In debug mode bodies carry the
// cause and stack trace.
func NewErrorWriter(logger *zap.Logger, debug bool) *ErrorWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorWriter{logger: logger, debug: debug}
}

// Write responds with the status and type carried by err. Errors that are
// not AppErrors are reported as INTERNAL without their message.
func (ew *ErrorWriter) Write(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	appErr := pkgerrors.GetAppError(err)
	if appErr == nil {
		appErr = pkgerrors.NewInternalError("an internal error occurred").WithCause(err)
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	info := &common.ErrorInfo{
		Type:      string(appErr.Type),
		Message:   appErr.Message,
		Code:      appErr.Code,
		Retryable: retryable(appErr),
		Details:   make(map[string]interface{}, len(appErr.Details)),
	}
	for k, v := range appErr.Details {
		if k == "retryable" {
			continue
		}
		info.Details[k] = v
	}
	if ew.debug {
		if appErr.Cause != nil {
			info.Details["cause"] = appErr.Cause.Error()
		}
		if appErr.StackTrace != "" {
			info.Details["stack_trace"] = appErr.StackTrace
		}
	}
	if len(info.Details) == 0 {
		info.Details = nil
	}

	ew.log(r, appErr, status)
	common.RespondError(w, status, info, common.NewMeta(r, APIVersion))
}

// NotFound reports an unknown route
func (ew *ErrorWriter) NotFound(w http.ResponseWriter, r *http.Request) {
	ew.Write(w, r, pkgerrors.NewNotFoundError("route "+r.Method+" "+r.URL.Path))
}

// Recover turns a panic in a handler into an INTERNAL response
func (ew *ErrorWriter) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				ew.Write(w, r, pkgerrors.NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// retryable reports whether repeating the request may succeed. A gesture in
// flight ends on pointer-up; persistence failures carry the backend's verdict
// or inherit it from an unavailable cause such as an open breaker.
func retryable(e *pkgerrors.AppError) bool {
	switch e.Type {
	case pkgerrors.ErrorTypeUnavailable, pkgerrors.ErrorTypeGestureActive:
		return true
	case pkgerrors.ErrorTypePersistence:
		if v, ok := e.Details["retryable"].(bool); ok {
			return v
		}
		return pkgerrors.IsType(e.Cause, pkgerrors.ErrorTypeUnavailable)
	default:
		return false
	}
}

// log reports interaction rejections at debug, other client errors at info
// and failures of the canvas or its storage at warn or error
func (ew *ErrorWriter) log(r *http.Request, e *pkgerrors.AppError, status int) {
	fields := []zap.Field{
		zap.String("error_type", string(e.Type)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", common.ExtractRequestID(r)),
	}
	if e.Code != "" {
		fields = append(fields, zap.String("error_code", e.Code))
	}
	if e.Cause != nil {
		fields = append(fields, zap.Error(e.Cause))
	}

	switch e.Type {
	case pkgerrors.ErrorTypeReadOnly, pkgerrors.ErrorTypeInvalidLink,
		pkgerrors.ErrorTypeGestureActive, pkgerrors.ErrorTypeAmbiguousMerge,
		pkgerrors.ErrorTypeUnknownPropertyKind:
		ew.logger.Debug(e.Message, fields...)
	case pkgerrors.ErrorTypePersistence, pkgerrors.ErrorTypeUnavailable:
		ew.logger.Warn(e.Message, fields...)
	default:
		if status >= 500 {
			ew.logger.Error(e.Message, fields...)
			return
		}
		ew.logger.Info(e.Message, fields...)
	}
}
