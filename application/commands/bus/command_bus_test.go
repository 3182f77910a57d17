package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "brain2-canvas/pkg/errors"
)

type pingCommand struct {
	Target string
}

func (c *pingCommand) Validate() error {
	if c.Target == "" {
		return pkgerrors.NewValidationError("target is required")
	}
	return nil
}

type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) Handle(ctx context.Context, cmd Command) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type recordingRecorder struct {
	names []string
	errs  []error
}

func (r *recordingRecorder) CommandHandled(name string, err error, _ time.Duration) {
	r.names = append(r.names, name)
	r.errs = append(r.errs, err)
}

func TestCommandBus_Send(t *testing.T) {
	ctx := context.Background()
	handler := new(MockHandler)
	recorder := &recordingRecorder{}
	b := NewCommandBus(LoggingMiddleware(zap.NewNop()), MetricsMiddleware(recorder))
	require.NoError(t, b.Register(&pingCommand{}, handler))

	cmd := &pingCommand{Target: "a"}
	handler.On("Handle", ctx, cmd).Return(nil).Once()
	require.NoError(t, b.Send(ctx, cmd))

	failing := &pingCommand{Target: "b"}
	boom := pkgerrors.NewConflictError("boom")
	handler.On("Handle", ctx, failing).Return(boom).Once()
	err := b.Send(ctx, failing)
	assert.True(t, errors.Is(err, boom), "handler errors are returned unchanged")

	handler.AssertExpectations(t)
	assert.Equal(t, []string{"pingCommand", "pingCommand"}, recorder.names)
	assert.Nil(t, recorder.errs[0])
}

func TestCommandBus_ValidationShortCircuits(t *testing.T) {
	handler := new(MockHandler)
	b := NewCommandBus()
	require.NoError(t, b.Register(&pingCommand{}, handler))

	err := b.Send(context.Background(), &pingCommand{})

	assert.True(t, pkgerrors.IsValidation(err))
	handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestCommandBus_RegistrationErrors(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(&pingCommand{}, new(MockHandler)))

	err := b.Register(&pingCommand{}, new(MockHandler))
	assert.True(t, pkgerrors.IsConflict(err))

	other := NewCommandBus()
	err = other.Send(context.Background(), &pingCommand{Target: "x"})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestPipeline_Order(t *testing.T) {
	var calls []string
	tag := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				calls = append(calls, name)
				return next.Handle(ctx, cmd)
			})
		}
	}
	final := CommandHandlerFunc(func(context.Context, Command) error {
		calls = append(calls, "handler")
		return nil
	})

	h := NewPipeline(tag("outer"), tag("inner")).Execute(final)
	require.NoError(t, h.Handle(context.Background(), &pingCommand{Target: "x"}))

	assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
}
