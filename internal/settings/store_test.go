package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/civic-stack/complaint-service/internal/domain"
)

func TestStoreFallsBackToDefaults(t *testing.T) {
	store := NewStore(nil, Defaults{
		AssignmentMethod:  domain.MethodRoundRobin,
		AutoAssignEnabled: true,
	}, zap.NewNop())

	ctx := context.Background()
	assert.Equal(t, domain.MethodRoundRobin, store.AssignmentMethod(ctx))
	assert.True(t, store.AutoAssignEnabled(ctx))
}

func TestSetWithoutClientFails(t *testing.T) {
	store := NewStore(nil, Defaults{}, zap.NewNop())
	assert.Error(t, store.Set(context.Background(), KeyAssignmentMethod, "workload"))
}
