package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                  { return s.name }
func (s stubChecker) Check(_ context.Context) error { return s.err }

func TestReady(t *testing.T) {
	ok := NewService(stubChecker{name: "postgres"}, stubChecker{name: "redis"})
	assert.NoError(t, ok.Ready(context.Background()))

	down := errors.New("connection refused")
	svc := NewService(stubChecker{name: "postgres"}, stubChecker{name: "redis", err: down})
	err := svc.Ready(context.Background())
	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "redis")

	comps := svc.Components(context.Background())
	assert.NoError(t, comps["postgres"])
	assert.ErrorIs(t, comps["redis"], down)
}
