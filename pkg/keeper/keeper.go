package keeper

import (
	"context"
	"sync"
	"time"

	"github.com/Layr-Labs/trust-task/pkg/blockCursor"
	"github.com/Layr-Labs/trust-task/pkg/requestLedger"
	"github.com/Layr-Labs/trust-task/pkg/taskDispatcher"
	"github.com/Layr-Labs/trust-task/pkg/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LifecycleState models the poll loop's lifecycle explicitly instead of a
// mutable running flag.
type LifecycleState string

const (
	StateStopped  LifecycleState = "stopped"
	StateStarting LifecycleState = "starting"
	StateRunning  LifecycleState = "running"
	StateStopping LifecycleState = "stopping"
)

// IChainHeightReader is the slice of the ledger-chain client the loop
// needs to find new block ranges.
type IChainHeightReader interface {
	GetLatestBlock(ctx context.Context) (uint64, error)
}

// IEventIngestor fetches and decodes request events for a block range,
// reporting how many malformed events it dropped.
type IEventIngestor interface {
	FetchRequests(ctx context.Context, fromBlock, toBlock uint64) ([]*types.DecodedRequest, int, error)
}

// ICompletionSubmitter writes a verdict back to the ledger and waits for
// confirmation.
type ICompletionSubmitter interface {
	Submit(ctx context.Context, req *types.DecodedRequest, result bool) error
}

type KeeperConfig struct {
	PollInterval time.Duration
}

// Keeper runs the single cooperative poll loop: read height, fetch and
// decode a batch, then dispatch, evaluate and submit each request strictly
// in order, advancing the block cursor only once the whole batch has been
// durably submitted.
type Keeper struct {
	heightReader IChainHeightReader
	ingestor     IEventIngestor
	dispatcher   *taskDispatcher.TaskDispatcher
	submitter    ICompletionSubmitter
	cursor       *blockCursor.Cursor
	config       *KeeperConfig
	logger       *zap.Logger

	mu    sync.Mutex
	state LifecycleState
}

func NewKeeper(
	heightReader IChainHeightReader,
	ingestor IEventIngestor,
	dispatcher *taskDispatcher.TaskDispatcher,
	submitter ICompletionSubmitter,
	cursor *blockCursor.Cursor,
	config *KeeperConfig,
	logger *zap.Logger,
) *Keeper {
	return &Keeper{
		heightReader: heightReader,
		ingestor:     ingestor,
		dispatcher:   dispatcher,
		submitter:    submitter,
		cursor:       cursor,
		config:       config,
		logger:       logger,
		state:        StateStopped,
	}
}

func (k *Keeper) State() LifecycleState {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state
}

func (k *Keeper) setState(s LifecycleState) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.state = s
}

// Start seeds the cursor at the current chain height and runs the poll
// loop until the context is cancelled or a fatal error occurs. A cycle
// already in flight always runs to completion; cancellation is only
// observed between cycles.
func (k *Keeper) Start(ctx context.Context) error {
	k.mu.Lock()
	if k.state != StateStopped {
		k.mu.Unlock()
		return errors.Errorf("keeper cannot start from state %s", k.state)
	}
	k.state = StateStarting
	k.mu.Unlock()

	height, err := k.heightReader.GetLatestBlock(ctx)
	if err != nil {
		k.setState(StateStopped)
		return errors.Wrap(err, "failed to read chain height at startup")
	}
	k.cursor.Initialize(height)

	k.setState(StateRunning)
	k.logger.Sugar().Infow("Keeper started",
		zap.Uint64("startHeight", height),
		zap.Duration("pollInterval", k.config.PollInterval),
	)

	ticker := time.NewTicker(k.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			k.setState(StateStopping)
			k.logger.Sugar().Infow("Keeper stopping, last cycle completed",
				zap.Uint64("lastProcessedBlock", k.cursor.LastProcessedBlock()),
			)
			k.setState(StateStopped)
			return nil
		case <-ticker.C:
			// Cancellation is honored between cycles only; the cycle body
			// gets a context the external stop cannot interrupt, so a
			// submission in flight always lands before the loop exits.
			if err := k.runCycle(context.WithoutCancel(ctx)); err != nil {
				k.setState(StateStopping)
				k.logger.Sugar().Errorw("Keeper halting on fatal error", zap.Error(err))
				k.setState(StateStopped)
				return err
			}
		}
	}
}

// runCycle processes one poll cycle. Transient failures abandon the cycle
// with the cursor unchanged so the same range is retried after the normal
// delay; only configuration-class failures return an error.
func (k *Keeper) runCycle(ctx context.Context) error {
	cycleId := uuid.New().String()
	sugar := k.logger.Sugar().With("cycleId", cycleId)

	latest, err := k.heightReader.GetLatestBlock(ctx)
	if err != nil {
		sugar.Warnw("Failed to read chain height, abandoning cycle", zap.Error(err))
		return nil
	}

	fromBlock, toBlock, ok := k.cursor.NextRange(latest)
	if !ok {
		sugar.Debugw("No new blocks",
			zap.Uint64("lastProcessedBlock", k.cursor.LastProcessedBlock()),
			zap.Uint64("chainHeight", latest),
		)
		return nil
	}

	requests, dropped, err := k.ingestor.FetchRequests(ctx, fromBlock, toBlock)
	if err != nil {
		sugar.Warnw("Failed to ingest batch, range will be retried",
			zap.Uint64("fromBlock", fromBlock),
			zap.Uint64("toBlock", toBlock),
			zap.Error(err),
		)
		return nil
	}

	for _, req := range requests {
		evaluator, err := k.dispatcher.Lookup(req.Type)
		if err != nil {
			sugar.Warnw("Skipping request with unrecognized task type",
				zap.Uint64("taskId", req.TaskId),
				zap.String("taskType", req.Type.String()),
			)
			continue
		}

		result, err := evaluator.Evaluate(ctx, req.Subject)
		if err != nil {
			sugar.Warnw("Evaluation failed, abandoning cycle",
				zap.Uint64("taskId", req.TaskId),
				zap.String("subject", req.Subject.Hex()),
				zap.Error(err),
			)
			return nil
		}

		if err := k.submitter.Submit(ctx, req, result); err != nil {
			if errors.Is(err, requestLedger.ErrUnauthorized) {
				return err
			}
			sugar.Warnw("Submission failed, abandoning cycle",
				zap.Uint64("taskId", req.TaskId),
				zap.Error(err),
			)
			return nil
		}

		sugar.Infow("Submitted verdict",
			zap.Uint64("taskId", req.TaskId),
			zap.String("taskType", req.Type.String()),
			zap.Bool("result", result),
		)
	}

	if dropped > 0 {
		// Completions for the decoded siblings already landed; the range is
		// re-derived next cycle and their resubmissions surface as
		// already-completed.
		sugar.Warnw("Batch contained malformed events, range will be re-scanned",
			zap.Uint64("fromBlock", fromBlock),
			zap.Uint64("toBlock", toBlock),
			zap.Int("dropped", dropped),
		)
		return nil
	}

	if err := k.cursor.Advance(fromBlock-1, toBlock); err != nil {
		return errors.Wrap(err, "cursor advancement failed")
	}
	sugar.Infow("Advanced cursor",
		zap.Uint64("fromBlock", fromBlock),
		zap.Uint64("toBlock", toBlock),
		zap.Int("requests", len(requests)),
	)
	return nil
}
