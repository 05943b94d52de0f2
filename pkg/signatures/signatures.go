package signatures

import (
	"strings"
	"sync"

	"github.com/Layr-Labs/trust-task/pkg/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// SignatureVersion identifies which historical shape of the TaskRequested
// event a log matches.
type SignatureVersion uint8

const (
	SignatureVersionLegacy SignatureVersion = iota
	SignatureVersionCurrent
)

func (v SignatureVersion) String() string {
	switch v {
	case SignatureVersionLegacy:
		return "legacy"
	case SignatureVersionCurrent:
		return "current"
	default:
		return "unknown"
	}
}

const (
	// TaskRequestedCurrentSignature carries the task type as a uint8 in the
	// data payload.
	TaskRequestedCurrentSignature = "TaskRequested(uint256,address,address,uint8)"

	// TaskRequestedLegacySignature predates task typing; logs matching it
	// default to the balance-check type.
	TaskRequestedLegacySignature = "TaskRequested(uint256,address,address)"

	TaskCompletedSignature = "TaskCompleted(uint256,address,bool)"
	KeeperUpdatedSignature = "KeeperUpdated(address,address)"
)

var (
	TaskRequestedCurrentTopic = crypto.Keccak256Hash([]byte(TaskRequestedCurrentSignature))
	TaskRequestedLegacyTopic  = crypto.Keccak256Hash([]byte(TaskRequestedLegacySignature))
	TaskCompletedTopic        = crypto.Keccak256Hash([]byte(TaskCompletedSignature))
	KeeperUpdatedTopic        = crypto.Keccak256Hash([]byte(KeeperUpdatedSignature))
)

// RequestSignature describes one supported version of the request event and
// how to derive the task type from a raw log matching it.
type RequestSignature struct {
	Version     SignatureVersion
	Topic       common.Hash
	HasTypeData bool
	DefaultType types.TaskType
}

// RequestSignatures lists every supported request event shape, newest first.
// Both the ingestor and the test harness consult this table; adding a new
// event version is an entry here, not a new code path.
var RequestSignatures = []RequestSignature{
	{
		Version:     SignatureVersionCurrent,
		Topic:       TaskRequestedCurrentTopic,
		HasTypeData: true,
	},
	{
		Version:     SignatureVersionLegacy,
		Topic:       TaskRequestedLegacyTopic,
		HasTypeData: false,
		DefaultType: types.TaskTypeBalanceCheck,
	},
}

// LookupRequestTopic matches a topic-0 hash against the signature table.
func LookupRequestTopic(topic common.Hash) (RequestSignature, bool) {
	for _, sig := range RequestSignatures {
		if sig.Topic == topic {
			return sig, true
		}
	}
	return RequestSignature{}, false
}

// IsLedgerHousekeepingTopic reports whether a topic-0 belongs to a ledger
// event the ingestor should silently skip rather than treat as unknown.
func IsLedgerHousekeepingTopic(topic common.Hash) bool {
	return topic == TaskCompletedTopic || topic == KeeperUpdatedTopic
}

const requestLedgerABIJson = `[
	{"type":"event","name":"TaskRequested","inputs":[
		{"name":"taskId","type":"uint256","indexed":true},
		{"name":"requester","type":"address","indexed":true},
		{"name":"subject","type":"address","indexed":true},
		{"name":"taskType","type":"uint8","indexed":false}
	]},
	{"type":"event","name":"TaskCompleted","inputs":[
		{"name":"taskId","type":"uint256","indexed":true},
		{"name":"keeper","type":"address","indexed":true},
		{"name":"result","type":"bool","indexed":false}
	]},
	{"type":"event","name":"KeeperUpdated","inputs":[
		{"name":"previousKeeper","type":"address","indexed":true},
		{"name":"newKeeper","type":"address","indexed":true}
	]},
	{"type":"function","name":"completeTask","stateMutability":"nonpayable","inputs":[
		{"name":"taskId","type":"uint256"},
		{"name":"result","type":"bool"}
	],"outputs":[]},
	{"type":"function","name":"getTask","stateMutability":"view","inputs":[
		{"name":"taskId","type":"uint256"}
	],"outputs":[
		{"name":"id","type":"uint256"},
		{"name":"requester","type":"address"},
		{"name":"subject","type":"address"},
		{"name":"taskType","type":"uint8"},
		{"name":"state","type":"uint8"},
		{"name":"result","type":"bool"},
		{"name":"createdAt","type":"uint256"},
		{"name":"completedAt","type":"uint256"}
	]},
	{"type":"function","name":"getTaskResult","stateMutability":"view","inputs":[
		{"name":"taskId","type":"uint256"}
	],"outputs":[{"name":"result","type":"bool"}]},
	{"type":"function","name":"keeper","stateMutability":"view","inputs":[],
		"outputs":[{"name":"","type":"address"}]}
]`

var (
	ledgerABI     *abi.ABI
	ledgerABIOnce sync.Once
	ledgerABIErr  error
)

// RequestLedgerABI returns the parsed ABI of the request ledger contract.
func RequestLedgerABI() (*abi.ABI, error) {
	ledgerABIOnce.Do(func() {
		parsed, err := abi.JSON(strings.NewReader(requestLedgerABIJson))
		if err != nil {
			ledgerABIErr = errors.Wrap(err, "failed to parse request ledger ABI")
			return
		}
		ledgerABI = &parsed
	})
	return ledgerABI, ledgerABIErr
}
