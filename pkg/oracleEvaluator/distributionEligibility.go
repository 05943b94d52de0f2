package oracleEvaluator

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DistributionEligibilityEvaluator decides whether a subject qualifies for
// a token distribution. The current policy is the same has-any-balance
// predicate as the balance check; it is registered as its own evaluator so
// the policy can diverge without touching the dispatch path.
//
// TODO: replace the has-balance placeholder once distribution eligibility
// rules are defined.
type DistributionEligibilityEvaluator struct {
	client IBalanceReader
	logger *zap.Logger
}

func NewDistributionEligibilityEvaluator(client IBalanceReader, logger *zap.Logger) *DistributionEligibilityEvaluator {
	return &DistributionEligibilityEvaluator{
		client: client,
		logger: logger,
	}
}

func (dee *DistributionEligibilityEvaluator) Name() string {
	return "distributionEligibility"
}

func (dee *DistributionEligibilityEvaluator) Evaluate(ctx context.Context, subject common.Address) (bool, error) {
	balance, err := dee.client.GetBalance(ctx, subject.Hex())
	if err != nil {
		return false, errors.Wrapf(err, "failed to read balance of %s", subject.Hex())
	}
	return balance.Sign() > 0, nil
}
