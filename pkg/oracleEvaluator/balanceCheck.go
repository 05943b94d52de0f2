package oracleEvaluator

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// BalanceCheckEvaluator answers true iff the subject holds a strictly
// positive native balance on the authoritative chain.
type BalanceCheckEvaluator struct {
	client IBalanceReader
	logger *zap.Logger
}

func NewBalanceCheckEvaluator(client IBalanceReader, logger *zap.Logger) *BalanceCheckEvaluator {
	return &BalanceCheckEvaluator{
		client: client,
		logger: logger,
	}
}

func (bce *BalanceCheckEvaluator) Name() string {
	return "balanceCheck"
}

func (bce *BalanceCheckEvaluator) Evaluate(ctx context.Context, subject common.Address) (bool, error) {
	balance, err := bce.client.GetBalance(ctx, subject.Hex())
	if err != nil {
		return false, errors.Wrapf(err, "failed to read balance of %s", subject.Hex())
	}
	eligible := balance.Sign() > 0
	bce.logger.Sugar().Debugw("Evaluated subject balance",
		zap.String("subject", subject.Hex()),
		zap.String("balance", balance.String()),
		zap.Bool("eligible", eligible),
	)
	return eligible, nil
}
