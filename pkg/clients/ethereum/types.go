package ethereum

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// EthereumQuantity is a uint64 that marshals to and from the 0x-prefixed
// hex quantity encoding used by the JSON-RPC API.
type EthereumQuantity uint64

func (q EthereumQuantity) Value() uint64 {
	return uint64(q)
}

func (q EthereumQuantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.EncodeUint64(uint64(q)))
}

func (q *EthereumQuantity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := hexutil.DecodeUint64(s)
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	*q = EthereumQuantity(v)
	return nil
}

// EthereumHexString is a 0x-prefixed hex string as returned by the RPC API.
type EthereumHexString string

func (s EthereumHexString) Value() string {
	return string(s)
}

// EthereumEventLog is a raw log entry as returned by eth_getLogs.
type EthereumEventLog struct {
	Address          EthereumHexString   `json:"address"`
	Topics           []EthereumHexString `json:"topics"`
	Data             EthereumHexString   `json:"data"`
	BlockNumber      EthereumQuantity    `json:"blockNumber"`
	TransactionHash  EthereumHexString   `json:"transactionHash"`
	TransactionIndex EthereumQuantity    `json:"transactionIndex"`
	LogIndex         EthereumQuantity    `json:"logIndex"`
	Removed          bool                `json:"removed"`
}
