package oracleEvaluator

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var subjectAddr = common.HexToAddress("0x5000000000000000000000000000000000000005")

type fakeBalanceReader struct {
	balances map[string]*big.Int
	err      error
}

func (f *fakeBalanceReader) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	if b, ok := f.balances[address]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

func TestBalanceCheck_ZeroBalanceIsFalse(t *testing.T) {
	evaluator := NewBalanceCheckEvaluator(&fakeBalanceReader{}, zap.NewNop())

	eligible, err := evaluator.Evaluate(context.Background(), subjectAddr)
	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestBalanceCheck_PositiveBalanceIsTrue(t *testing.T) {
	reader := &fakeBalanceReader{balances: map[string]*big.Int{
		subjectAddr.Hex(): big.NewInt(1),
	}}
	evaluator := NewBalanceCheckEvaluator(reader, zap.NewNop())

	eligible, err := evaluator.Evaluate(context.Background(), subjectAddr)
	require.NoError(t, err)
	assert.True(t, eligible)
}

// A transient read failure must propagate rather than turn into a false
// verdict.
func TestBalanceCheck_ReadFailurePropagates(t *testing.T) {
	reader := &fakeBalanceReader{err: errors.New("rpc timeout")}
	evaluator := NewBalanceCheckEvaluator(reader, zap.NewNop())

	_, err := evaluator.Evaluate(context.Background(), subjectAddr)
	assert.Error(t, err)
}

func TestDistributionEligibility_SharesBalancePredicate(t *testing.T) {
	reader := &fakeBalanceReader{balances: map[string]*big.Int{
		subjectAddr.Hex(): big.NewInt(5),
	}}
	evaluator := NewDistributionEligibilityEvaluator(reader, zap.NewNop())

	eligible, err := evaluator.Evaluate(context.Background(), subjectAddr)
	require.NoError(t, err)
	assert.True(t, eligible)

	_, err = NewDistributionEligibilityEvaluator(&fakeBalanceReader{err: errors.New("down")}, zap.NewNop()).
		Evaluate(context.Background(), subjectAddr)
	assert.Error(t, err)
}
