package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"brain2-canvas/pkg/common"
	pkgerrors "brain2-canvas/pkg/errors"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) common.APIResponse {
	t.Helper()
	var resp common.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestErrorWriter_Write(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		debug         bool
		wantStatus    int
		wantType      pkgerrors.ErrorType
		wantMessage   string
		wantRetryable bool
		wantDetails   map[string]interface{}
	}{
		{
			name:        "read only",
			err:         pkgerrors.NewReadOnlyViolation("drag"),
			wantStatus:  http.StatusForbidden,
			wantType:    pkgerrors.ErrorTypeReadOnly,
			wantMessage: "graph is read-only: drag is not allowed",
			wantDetails: map[string]interface{}{"operation": "drag"},
		},
		{
			name:        "invalid link",
			err:         pkgerrors.NewInvalidLinkError("link cannot connect a node to itself"),
			wantStatus:  http.StatusBadRequest,
			wantType:    pkgerrors.ErrorTypeInvalidLink,
			wantMessage: "link cannot connect a node to itself",
		},
		{
			name:          "gesture active",
			err:           pkgerrors.NewGestureActiveError("link"),
			wantStatus:    http.StatusConflict,
			wantType:      pkgerrors.ErrorTypeGestureActive,
			wantMessage:   "gesture link is still active",
			wantRetryable: true,
			wantDetails:   map[string]interface{}{"gesture": "link"},
		},
		{
			name: "throttled save",
			err: pkgerrors.NewPersistenceError("saveProject", errors.New("throttled")).
				WithCode("ThrottlingException").WithDetail("retryable", true),
			wantStatus:    http.StatusServiceUnavailable,
			wantType:      pkgerrors.ErrorTypePersistence,
			wantMessage:   "persistence operation 'saveProject' failed",
			wantRetryable: true,
			wantDetails:   map[string]interface{}{"operation": "saveProject"},
		},
		{
			name:          "save behind open breaker",
			err:           pkgerrors.NewPersistenceError("save_project", pkgerrors.NewUnavailableError("dynamodb")),
			wantStatus:    http.StatusServiceUnavailable,
			wantType:      pkgerrors.ErrorTypePersistence,
			wantMessage:   "persistence operation 'save_project' failed",
			wantRetryable: true,
			wantDetails:   map[string]interface{}{"operation": "save_project"},
		},
		{
			name:        "plain error hidden",
			err:         errors.New("secret detail"),
			wantStatus:  http.StatusInternalServerError,
			wantType:    pkgerrors.ErrorTypeInternal,
			wantMessage: "an internal error occurred",
		},
		{
			name:        "plain error in debug",
			err:         errors.New("secret detail"),
			debug:       true,
			wantStatus:  http.StatusInternalServerError,
			wantType:    pkgerrors.ErrorTypeInternal,
			wantMessage: "an internal error occurred",
			wantDetails: map[string]interface{}{"cause": "secret detail"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ew := NewErrorWriter(zap.NewNop(), tt.debug)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/save", nil)
			req.Header.Set("X-Request-ID", "req-1")

			ew.Write(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.False(t, resp.Success)
			assert.Nil(t, resp.Data)
			assert.Equal(t, string(tt.wantType), resp.Error.Type)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
			assert.Equal(t, tt.wantRetryable, resp.Error.Retryable)
			require.NotNil(t, resp.Meta)
			assert.Equal(t, "req-1", resp.Meta.RequestID)
			assert.Equal(t, APIVersion, resp.Meta.Version)

			details := resp.Error.Details
			delete(details, "stack_trace")
			if len(tt.wantDetails) == 0 {
				assert.Empty(t, details)
				return
			}
			assert.Equal(t, tt.wantDetails, details)
		})
	}
}

func TestErrorWriter_DebugIncludesStackTrace(t *testing.T) {
	rec := httptest.NewRecorder()
	NewErrorWriter(nil, true).Write(rec, httptest.NewRequest(http.MethodGet, "/", nil), pkgerrors.NewReadOnlyViolation("nudge"))

	resp := decodeError(t, rec)
	assert.NotEmpty(t, resp.Error.Details["stack_trace"])
	assert.Equal(t, "nudge", resp.Error.Details["operation"])
}

func TestErrorWriter_Recover(t *testing.T) {
	ew := NewErrorWriter(zap.NewNop(), false)
	handler := ew.Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("renderer exploded")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, string(pkgerrors.ErrorTypeInternal), resp.Error.Type)
	assert.Equal(t, "panic: renderer exploded", resp.Error.Message)
}

func TestErrorWriter_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NewErrorWriter(nil, false).NotFound(rec, httptest.NewRequest(http.MethodGet, "/api/v2/graph", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, string(pkgerrors.ErrorTypeNotFound), resp.Error.Type)
	assert.Equal(t, "route GET /api/v2/graph not found", resp.Error.Message)
}
