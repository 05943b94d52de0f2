package oracleEvaluator

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// IOracleEvaluator answers the yes/no question a task type requires by
// reading the authoritative chain. Evaluators never mutate state; read
// failures are propagated so the caller retries instead of submitting a
// wrong verdict.
type IOracleEvaluator interface {
	Name() string
	Evaluate(ctx context.Context, subject common.Address) (bool, error)
}

// IBalanceReader is the slice of the authoritative-chain client the
// balance-based evaluators need.
type IBalanceReader interface {
	GetBalance(ctx context.Context, address string) (*big.Int, error)
}
