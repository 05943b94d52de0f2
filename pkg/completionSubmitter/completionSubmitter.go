package completionSubmitter

import (
	"context"
	"math/big"

	"github.com/Layr-Labs/trust-task/pkg/contractCaller"
	"github.com/Layr-Labs/trust-task/pkg/requestLedger"
	"github.com/Layr-Labs/trust-task/pkg/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// IFundingChecker reports the distribution authority's available balance,
// used purely for pre-submission diagnostics. The ledger enforces the real
// funding guard atomically with completion.
type IFundingChecker interface {
	DistributionBalance(ctx context.Context) (*big.Int, error)
}

// CompletionSubmitter writes verdicts back to the request ledger and
// classifies the ledger's responses: already-completed is an
// already-satisfied outcome, unauthorized is fatal, everything else is
// retryable by the caller.
type CompletionSubmitter struct {
	caller             contractCaller.IRequestLedgerCaller
	fundingChecker     IFundingChecker
	distributionAmount *big.Int
	logger             *zap.Logger
}

type SubmitterOption func(*CompletionSubmitter)

// WithFundingChecker enables the diagnostic funding pre-check for true
// token-distribution verdicts.
func WithFundingChecker(checker IFundingChecker, distributionAmount *big.Int) SubmitterOption {
	return func(cs *CompletionSubmitter) {
		cs.fundingChecker = checker
		cs.distributionAmount = new(big.Int).Set(distributionAmount)
	}
}

func NewCompletionSubmitter(caller contractCaller.IRequestLedgerCaller, logger *zap.Logger, opts ...SubmitterOption) *CompletionSubmitter {
	cs := &CompletionSubmitter{
		caller: caller,
		logger: logger,
	}
	for _, opt := range opts {
		opt(cs)
	}
	return cs
}

// Submit writes the verdict for a request and waits for confirmation.
// Returns nil when the task ends up completed, whether by this submission
// or a previous one.
func (cs *CompletionSubmitter) Submit(ctx context.Context, req *types.DecodedRequest, result bool) error {
	if req.Type == types.TaskTypeTokenDistribution && result {
		cs.preCheckFunding(ctx, req)
	}

	err := cs.caller.CompleteTask(ctx, req.TaskId, result)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, requestLedger.ErrAlreadyCompleted):
		// Expected under at-least-once redelivery after a crash between
		// submission and cursor advancement.
		cs.logger.Sugar().Infow("Task already completed, treating as satisfied",
			zap.Uint64("taskId", req.TaskId),
		)
		return nil
	case errors.Is(err, requestLedger.ErrTaskNotFound):
		// Should not happen when ingestion is correct; log the anomaly and
		// let the batch advance rather than wedge the cursor.
		cs.logger.Sugar().Errorw("Ledger has no task for a decoded request",
			zap.Uint64("taskId", req.TaskId),
			zap.String("transactionHash", req.TransactionHash),
		)
		return nil
	case errors.Is(err, requestLedger.ErrUnauthorized):
		return errors.Wrapf(err, "completion of task %d rejected: signing identity is not the keeper", req.TaskId)
	case errors.Is(err, requestLedger.ErrInsufficientBalance), errors.Is(err, requestLedger.ErrTransferFailed):
		cs.logger.Sugar().Warnw("Distribution could not be funded, task stays requested until retried",
			zap.Uint64("taskId", req.TaskId),
			zap.Error(err),
		)
		return err
	default:
		return errors.Wrapf(err, "failed to submit completion for task %d", req.TaskId)
	}
}

func (cs *CompletionSubmitter) preCheckFunding(ctx context.Context, req *types.DecodedRequest) {
	if cs.fundingChecker == nil {
		return
	}
	balance, err := cs.fundingChecker.DistributionBalance(ctx)
	if err != nil {
		cs.logger.Sugar().Debugw("Funding pre-check failed, proceeding with submission",
			zap.Uint64("taskId", req.TaskId),
			zap.Error(err),
		)
		return
	}
	if balance.Cmp(cs.distributionAmount) < 0 {
		cs.logger.Sugar().Warnw("Ledger balance below distribution amount, completion will likely fail",
			zap.Uint64("taskId", req.TaskId),
			zap.String("balance", balance.String()),
			zap.String("distributionAmount", cs.distributionAmount.String()),
		)
	}
}
