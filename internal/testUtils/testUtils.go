package testUtils

import (
	"math/big"

	"github.com/Layr-Labs/trust-task/pkg/clients/ethereum"
	"github.com/Layr-Labs/trust-task/pkg/signatures"
	"github.com/Layr-Labs/trust-task/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Helpers for synthesizing raw ledger logs in tests, shaped exactly like
// eth_getLogs output.

func HashTopic(h common.Hash) ethereum.EthereumHexString {
	return ethereum.EthereumHexString(h.Hex())
}

func Uint64Topic(v uint64) ethereum.EthereumHexString {
	return ethereum.EthereumHexString(common.BigToHash(new(big.Int).SetUint64(v)).Hex())
}

func AddressTopic(addr common.Address) ethereum.EthereumHexString {
	return ethereum.EthereumHexString(common.BytesToHash(addr.Bytes()).Hex())
}

// BuildCurrentRequestLog builds a raw TaskRequested log under the current
// signature: task id, requester and subject indexed, type byte in data.
func BuildCurrentRequestLog(ledger common.Address, taskId uint64, requester, subject common.Address, taskType types.TaskType, blockNumber, logIndex uint64) *ethereum.EthereumEventLog {
	data := common.LeftPadBytes([]byte{byte(taskType)}, 32)
	return &ethereum.EthereumEventLog{
		Address: ethereum.EthereumHexString(ledger.Hex()),
		Topics: []ethereum.EthereumHexString{
			HashTopic(signatures.TaskRequestedCurrentTopic),
			Uint64Topic(taskId),
			AddressTopic(requester),
			AddressTopic(subject),
		},
		Data:            ethereum.EthereumHexString(hexutil.Encode(data)),
		BlockNumber:     ethereum.EthereumQuantity(blockNumber),
		TransactionHash: ethereum.EthereumHexString(common.BigToHash(new(big.Int).SetUint64(taskId)).Hex()),
		LogIndex:        ethereum.EthereumQuantity(logIndex),
	}
}

// BuildLegacyRequestLog builds a raw TaskRequested log under the legacy
// signature, which carries no type byte.
func BuildLegacyRequestLog(ledger common.Address, taskId uint64, requester, subject common.Address, blockNumber, logIndex uint64) *ethereum.EthereumEventLog {
	return &ethereum.EthereumEventLog{
		Address: ethereum.EthereumHexString(ledger.Hex()),
		Topics: []ethereum.EthereumHexString{
			HashTopic(signatures.TaskRequestedLegacyTopic),
			Uint64Topic(taskId),
			AddressTopic(requester),
			AddressTopic(subject),
		},
		Data:            ethereum.EthereumHexString("0x"),
		BlockNumber:     ethereum.EthereumQuantity(blockNumber),
		TransactionHash: ethereum.EthereumHexString(common.BigToHash(new(big.Int).SetUint64(taskId)).Hex()),
		LogIndex:        ethereum.EthereumQuantity(logIndex),
	}
}

// BuildUnknownEventLog builds a log whose topic-0 matches no supported
// request signature.
func BuildUnknownEventLog(ledger common.Address, blockNumber, logIndex uint64) *ethereum.EthereumEventLog {
	return &ethereum.EthereumEventLog{
		Address: ethereum.EthereumHexString(ledger.Hex()),
		Topics: []ethereum.EthereumHexString{
			ethereum.EthereumHexString("0xdeadbeef00000000000000000000000000000000000000000000000000000000"),
		},
		Data:            ethereum.EthereumHexString("0x"),
		BlockNumber:     ethereum.EthereumQuantity(blockNumber),
		TransactionHash: ethereum.EthereumHexString("0xdeadbeef"),
		LogIndex:        ethereum.EthereumQuantity(logIndex),
	}
}
