package taskDispatcher

import (
	"context"
	"testing"

	"github.com/Layr-Labs/trust-task/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticEvaluator struct {
	name   string
	result bool
}

func (s *staticEvaluator) Name() string { return s.name }

func (s *staticEvaluator) Evaluate(ctx context.Context, subject common.Address) (bool, error) {
	return s.result, nil
}

func TestLookup_ReturnsRegisteredEvaluator(t *testing.T) {
	dispatcher := NewTaskDispatcher(zap.NewNop())
	balance := &staticEvaluator{name: "balance"}
	distribution := &staticEvaluator{name: "distribution"}

	dispatcher.Register(types.TaskTypeBalanceCheck, balance)
	dispatcher.Register(types.TaskTypeTokenDistribution, distribution)

	got, err := dispatcher.Lookup(types.TaskTypeBalanceCheck)
	require.NoError(t, err)
	assert.Equal(t, "balance", got.Name())

	got, err = dispatcher.Lookup(types.TaskTypeTokenDistribution)
	require.NoError(t, err)
	assert.Equal(t, "distribution", got.Name())
}

func TestLookup_UnknownTypeIsRejected(t *testing.T) {
	dispatcher := NewTaskDispatcher(zap.NewNop())
	dispatcher.Register(types.TaskTypeBalanceCheck, &staticEvaluator{name: "balance"})

	_, err := dispatcher.Lookup(types.TaskType(99))
	assert.ErrorIs(t, err, ErrUnknownTaskType)
}
