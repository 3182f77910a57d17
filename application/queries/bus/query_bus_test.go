package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "brain2-canvas/pkg/errors"
)

type pingQuery struct{ fail bool }

func (q pingQuery) Validate() error {
	if q.fail {
		return pkgerrors.NewValidationError("bad ping")
	}
	return nil
}

type otherQuery struct{}

func (otherQuery) Validate() error { return nil }

type countingRecorder struct {
	names []string
}

func (r *countingRecorder) QueryHandled(name string, err error, d time.Duration) {
	r.names = append(r.names, name)
}

func TestQueryBus_Ask(t *testing.T) {
	ctx := context.Background()
	recorder := &countingRecorder{}
	b := NewQueryBus(NewMetricsMiddleware(recorder))

	require.NoError(t, b.Register(pingQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
		return "pong", nil
	})))

	got, err := AskFor[string](ctx, b, pingQuery{})
	require.NoError(t, err)
	assert.Equal(t, "pong", got)
	assert.Equal(t, []string{"pingQuery"}, recorder.names)

	_, err = b.Ask(ctx, pingQuery{fail: true})
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Len(t, recorder.names, 1, "invalid queries never reach the handler")

	_, err = b.Ask(ctx, otherQuery{})
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = AskFor[int](ctx, b, pingQuery{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ErrorTypeInternal, pkgerrors.GetAppError(err).Type)
}

func TestQueryBus_RegisterTwice(t *testing.T) {
	b := NewQueryBus()
	h := QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) { return nil, nil })
	require.NoError(t, b.Register(pingQuery{}, h))
	assert.True(t, pkgerrors.IsConflict(b.Register(pingQuery{}, h)))
}
