package taskDispatcher

import (
	"sync"

	"github.com/Layr-Labs/trust-task/pkg/oracleEvaluator"
	"github.com/Layr-Labs/trust-task/pkg/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrUnknownTaskType marks a request whose type has no registered
// evaluator. Guessing eligibility for an unrecognized type is unsafe, so
// such requests are skipped, never defaulted.
var ErrUnknownTaskType = errors.New("no evaluator registered for task type")

// TaskDispatcher routes decoded requests to the evaluator registered for
// their task type.
type TaskDispatcher struct {
	mu         sync.RWMutex
	evaluators map[types.TaskType]oracleEvaluator.IOracleEvaluator
	logger     *zap.Logger
}

func NewTaskDispatcher(logger *zap.Logger) *TaskDispatcher {
	return &TaskDispatcher{
		evaluators: make(map[types.TaskType]oracleEvaluator.IOracleEvaluator),
		logger:     logger,
	}
}

// Register binds an evaluator to a task type, replacing any previous
// binding.
func (td *TaskDispatcher) Register(taskType types.TaskType, evaluator oracleEvaluator.IOracleEvaluator) {
	td.mu.Lock()
	defer td.mu.Unlock()
	td.evaluators[taskType] = evaluator
	td.logger.Sugar().Infow("Registered evaluator",
		zap.String("taskType", taskType.String()),
		zap.String("evaluator", evaluator.Name()),
	)
}

// Lookup returns the evaluator for a task type.
func (td *TaskDispatcher) Lookup(taskType types.TaskType) (oracleEvaluator.IOracleEvaluator, error) {
	td.mu.RLock()
	defer td.mu.RUnlock()
	evaluator, ok := td.evaluators[taskType]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTaskType, "type %s", taskType)
	}
	return evaluator, nil
}
