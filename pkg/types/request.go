package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// TaskType identifies which oracle question a request is asking. The value
// is carried on-chain as a uint8, so unknown values can arrive from ledger
// versions this build does not know about; they are preserved as-is and
// rejected at dispatch time.
type TaskType uint8

const (
	TaskTypeBalanceCheck      TaskType = 0
	TaskTypeTokenDistribution TaskType = 1
)

func (t TaskType) String() string {
	switch t {
	case TaskTypeBalanceCheck:
		return "BALANCE_CHECK"
	case TaskTypeTokenDistribution:
		return "TOKEN_DISTRIBUTION"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
	}
}

// DecodedRequest is the normalized projection of a request event,
// independent of which historical event signature it was decoded from.
type DecodedRequest struct {
	TaskId          uint64
	Requester       common.Address
	Subject         common.Address
	Type            TaskType
	BlockNumber     uint64
	LogIndex        uint64
	TransactionHash string
}
