package requestLedger

import (
	"math/big"
	"sync"
	"time"

	"github.com/Layr-Labs/trust-task/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Sentinel errors mirroring the ledger contract's revert reasons. The
// on-chain caller maps revert strings onto these so the rest of the
// pipeline handles one taxonomy regardless of which ledger backs it.
var (
	ErrUnauthorized        = errors.New("caller is not the designated keeper")
	ErrTaskNotFound        = errors.New("task not found")
	ErrAlreadyCompleted    = errors.New("task already completed")
	ErrNotCompleted        = errors.New("task not completed")
	ErrInsufficientBalance = errors.New("ledger balance below distribution amount")
	ErrTransferFailed      = errors.New("token transfer failed")
)

// DefaultDistributionAmount is the fixed amount transferred to the subject
// when a token-distribution task completes with a true result.
var DefaultDistributionAmount = big.NewInt(100)

type TaskState uint8

const (
	TaskStateRequested TaskState = 0
	TaskStateCompleted TaskState = 1
)

// Task is one request-and-eventual-verdict record. Result and CompletedAt
// are meaningful only once State is TaskStateCompleted.
type Task struct {
	Id          uint64
	Requester   common.Address
	Subject     common.Address
	Type        types.TaskType
	State       TaskState
	Result      bool
	CreatedAt   time.Time
	CompletedAt time.Time
}

type EventKind string

const (
	EventTaskRequested EventKind = "TaskRequested"
	EventTaskCompleted EventKind = "TaskCompleted"
	EventKeeperUpdated EventKind = "KeeperUpdated"
)

// Event is a recorded ledger notification, standing in for the contract's
// emitted events.
type Event struct {
	Kind           EventKind
	TaskId         uint64
	Requester      common.Address
	Subject        common.Address
	Type           types.TaskType
	Keeper         common.Address
	PreviousKeeper common.Address
	Result         bool
}

// TokenBackend is the transfer surface the ledger's distribution side
// effect runs against.
type TokenBackend interface {
	BalanceOf(addr common.Address) *big.Int
	Transfer(from, to common.Address, amount *big.Int) bool
}

// RequestLedger is a faithful in-process reproduction of the on-chain
// request ledger state machine: monotonic task ids starting at 1, a single
// mutable keeper authority, at-most-once completion, and a token
// distribution that is atomic with completion.
type RequestLedger struct {
	mu sync.Mutex

	owner   common.Address
	keeper  common.Address
	address common.Address

	token              TokenBackend
	distributionAmount *big.Int

	nextId uint64
	tasks  map[uint64]*Task
	order  []uint64
	events []Event

	now func() time.Time
}

type LedgerOption func(*RequestLedger)

// WithDistributionAmount overrides the fixed distribution amount.
func WithDistributionAmount(amount *big.Int) LedgerOption {
	return func(l *RequestLedger) {
		l.distributionAmount = new(big.Int).Set(amount)
	}
}

// WithClock injects a time source.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *RequestLedger) {
		l.now = now
	}
}

func NewRequestLedger(owner, keeper, ledgerAddress common.Address, backend TokenBackend, opts ...LedgerOption) *RequestLedger {
	l := &RequestLedger{
		owner:              owner,
		keeper:             keeper,
		address:            ledgerAddress,
		token:              backend,
		distributionAmount: new(big.Int).Set(DefaultDistributionAmount),
		nextId:             1,
		tasks:              make(map[uint64]*Task),
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Request records a new task in the Requested state, assigns the next id
// and emits a TaskRequested notification.
func (l *RequestLedger) Request(requester, subject common.Address, taskType types.TaskType) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextId
	l.nextId++

	l.tasks[id] = &Task{
		Id:        id,
		Requester: requester,
		Subject:   subject,
		Type:      taskType,
		State:     TaskStateRequested,
		CreatedAt: l.now(),
	}
	l.order = append(l.order, id)
	l.events = append(l.events, Event{
		Kind:      EventTaskRequested,
		TaskId:    id,
		Requester: requester,
		Subject:   subject,
		Type:      taskType,
	})
	return id
}

// Complete transitions a task Requested -> Completed. Only the designated
// keeper may call it, a task can complete at most once, and for a true
// token-distribution verdict the transfer must succeed or the whole
// operation fails with the task left in Requested.
func (l *RequestLedger) Complete(caller common.Address, taskId uint64, result bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.keeper {
		return ErrUnauthorized
	}
	task, ok := l.tasks[taskId]
	if taskId == 0 || !ok {
		return ErrTaskNotFound
	}
	if task.State == TaskStateCompleted {
		return ErrAlreadyCompleted
	}

	if task.Type == types.TaskTypeTokenDistribution && result {
		if l.token.BalanceOf(l.address).Cmp(l.distributionAmount) < 0 {
			return ErrInsufficientBalance
		}
		if !l.token.Transfer(l.address, task.Subject, l.distributionAmount) {
			return ErrTransferFailed
		}
	}

	task.State = TaskStateCompleted
	task.Result = result
	task.CompletedAt = l.now()

	l.events = append(l.events, Event{
		Kind:   EventTaskCompleted,
		TaskId: taskId,
		Keeper: caller,
		Result: result,
	})
	return nil
}

// SetKeeper changes the designated completion authority. Owner only; takes
// effect for all subsequent Complete calls.
func (l *RequestLedger) SetKeeper(caller, newKeeper common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return ErrUnauthorized
	}
	previous := l.keeper
	l.keeper = newKeeper
	l.events = append(l.events, Event{
		Kind:           EventKeeperUpdated,
		Keeper:         newKeeper,
		PreviousKeeper: previous,
	})
	return nil
}

// GetTask returns a copy of the task record.
func (l *RequestLedger) GetTask(taskId uint64) (*Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	task, ok := l.tasks[taskId]
	if !ok {
		return nil, ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// GetResult returns the verdict of a completed task.
func (l *RequestLedger) GetResult(taskId uint64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	task, ok := l.tasks[taskId]
	if !ok {
		return false, ErrTaskNotFound
	}
	if task.State != TaskStateCompleted {
		return false, ErrNotCompleted
	}
	return task.Result, nil
}

// ListTaskIds returns all task ids in insertion order.
func (l *RequestLedger) ListTaskIds() []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]uint64, len(l.order))
	copy(ids, l.order)
	return ids
}

func (l *RequestLedger) Keeper() common.Address {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.keeper
}

func (l *RequestLedger) Address() common.Address {
	return l.address
}

func (l *RequestLedger) DistributionAmount() *big.Int {
	return new(big.Int).Set(l.distributionAmount)
}

// Events returns a copy of all recorded notifications.
func (l *RequestLedger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	events := make([]Event, len(l.events))
	copy(events, l.events)
	return events
}

// EventsOfKind filters recorded notifications by kind.
func (l *RequestLedger) EventsOfKind(kind EventKind) []Event {
	all := l.Events()
	filtered := make([]Event, 0, len(all))
	for _, e := range all {
		if e.Kind == kind {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
