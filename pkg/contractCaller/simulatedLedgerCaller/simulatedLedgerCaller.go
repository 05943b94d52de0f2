package simulatedLedgerCaller

import (
	"context"
	"sync"

	"github.com/Layr-Labs/trust-task/pkg/requestLedger"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// SimulatedLedgerCaller backs the IRequestLedgerCaller surface with an
// in-process RequestLedger, acting as the given from address. Submissions
// confirm instantly, and transient submission failures can be injected to
// exercise retry paths.
type SimulatedLedgerCaller struct {
	ledger *requestLedger.RequestLedger
	from   common.Address
	logger *zap.SugaredLogger

	mu       sync.Mutex
	failNext error
}

func NewSimulatedLedgerCaller(ledger *requestLedger.RequestLedger, from common.Address, logger *zap.Logger) *SimulatedLedgerCaller {
	return &SimulatedLedgerCaller{
		ledger: ledger,
		from:   from,
		logger: logger.Sugar(),
	}
}

// FailNextSubmission makes the next CompleteTask return the given error
// before reaching the ledger.
func (slc *SimulatedLedgerCaller) FailNextSubmission(err error) {
	slc.mu.Lock()
	defer slc.mu.Unlock()
	slc.failNext = err
}

func (slc *SimulatedLedgerCaller) CompleteTask(ctx context.Context, taskId uint64, result bool) error {
	slc.mu.Lock()
	if err := slc.failNext; err != nil {
		slc.failNext = nil
		slc.mu.Unlock()
		return err
	}
	slc.mu.Unlock()

	slc.logger.Infow("Simulating completeTask",
		"taskId", taskId,
		"result", result,
		"from", slc.from.Hex(),
	)
	return slc.ledger.Complete(slc.from, taskId, result)
}

func (slc *SimulatedLedgerCaller) GetTask(ctx context.Context, taskId uint64) (*requestLedger.Task, error) {
	return slc.ledger.GetTask(taskId)
}

func (slc *SimulatedLedgerCaller) GetTaskResult(ctx context.Context, taskId uint64) (bool, error) {
	return slc.ledger.GetResult(taskId)
}

func (slc *SimulatedLedgerCaller) GetKeeper(ctx context.Context) (common.Address, error) {
	return slc.ledger.Keeper(), nil
}
