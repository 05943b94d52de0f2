package contractCaller

import (
	"context"

	"github.com/Layr-Labs/trust-task/pkg/requestLedger"
	"github.com/ethereum/go-ethereum/common"
)

// IRequestLedgerCaller is the read/write surface of the request ledger
// contract the keeper consumes. Implementations translate backend-specific
// failures into the requestLedger sentinel errors so callers handle one
// taxonomy.
type IRequestLedgerCaller interface {
	// CompleteTask submits the verdict for a task and blocks until the
	// transaction is durably confirmed.
	CompleteTask(ctx context.Context, taskId uint64, result bool) error

	GetTask(ctx context.Context, taskId uint64) (*requestLedger.Task, error)

	GetTaskResult(ctx context.Context, taskId uint64) (bool, error)

	GetKeeper(ctx context.Context) (common.Address, error)
}
