package eventIngestor

import (
	"context"
	"fmt"
	"sort"

	"github.com/Layr-Labs/trust-task/pkg/clients/ethereum"
	"github.com/Layr-Labs/trust-task/pkg/signatures"
	"github.com/Layr-Labs/trust-task/pkg/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrUnknownEventSignature aborts a batch: the cursor must not advance past
// a log this build cannot interpret, so the same range is retried next
// cycle.
var ErrUnknownEventSignature = errors.New("unknown event signature")

// ILogFetcher is the slice of the Ethereum client the ingestor needs.
type ILogFetcher interface {
	GetLogs(ctx context.Context, address string, fromBlock, toBlock uint64, topic0 ...string) ([]*ethereum.EthereumEventLog, error)
}

// EventIngestor retrieves request events for a block range. The primary
// path decodes through the current ABI; when that fails for a log, a raw
// decoder consults the versioned signature table so logs emitted under the
// legacy event shape are still understood.
type EventIngestor struct {
	client        ILogFetcher
	ledgerAddress string
	abi           *abi.ABI
	logger        *zap.Logger
}

func NewEventIngestor(client ILogFetcher, ledgerAddress string, logger *zap.Logger) (*EventIngestor, error) {
	a, err := signatures.RequestLedgerABI()
	if err != nil {
		return nil, err
	}
	return &EventIngestor{
		client:        client,
		ledgerAddress: ledgerAddress,
		abi:           a,
		logger:        logger,
	}, nil
}

// FetchRequests pulls and decodes all request events in the inclusive block
// range, ordered by block number then log index. Malformed events are
// dropped with a diagnostic and counted; an unrecognized event signature
// fails the whole fetch.
func (ei *EventIngestor) FetchRequests(ctx context.Context, fromBlock, toBlock uint64) ([]*types.DecodedRequest, int, error) {
	logs, err := ei.client.GetLogs(ctx, ei.ledgerAddress, fromBlock, toBlock)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to fetch logs for blocks [%d, %d]", fromBlock, toBlock)
	}

	var requests []*types.DecodedRequest
	dropped := 0
	for _, lg := range logs {
		if len(lg.Topics) == 0 {
			return nil, 0, errors.Wrapf(ErrUnknownEventSignature,
				"log with no topics in tx %s", lg.TransactionHash.Value())
		}
		topic0 := common.HexToHash(lg.Topics[0].Value())
		if signatures.IsLedgerHousekeepingTopic(topic0) {
			continue
		}

		req, err := ei.decodeLog(lg, topic0)
		if err != nil {
			if errors.Is(err, ErrUnknownEventSignature) {
				return nil, 0, err
			}
			dropped++
			ei.logger.Sugar().Warnw("Dropping malformed request event",
				zap.String("transactionHash", lg.TransactionHash.Value()),
				zap.Uint64("blockNumber", lg.BlockNumber.Value()),
				zap.String("topic0", topic0.Hex()),
				zap.Error(err),
			)
			continue
		}
		requests = append(requests, req)
	}

	sort.SliceStable(requests, func(i, j int) bool {
		if requests[i].BlockNumber != requests[j].BlockNumber {
			return requests[i].BlockNumber < requests[j].BlockNumber
		}
		return requests[i].LogIndex < requests[j].LogIndex
	})
	return requests, dropped, nil
}

func (ei *EventIngestor) decodeLog(lg *ethereum.EthereumEventLog, topic0 common.Hash) (*types.DecodedRequest, error) {
	req, err := ei.decodeStructured(lg, topic0)
	if err == nil {
		return req, validateRequest(req)
	}

	ei.logger.Sugar().Debugw("Structured decode failed, trying raw decode",
		zap.String("transactionHash", lg.TransactionHash.Value()),
		zap.String("topic0", topic0.Hex()),
		zap.Error(err),
	)

	req, err = ei.decodeRaw(lg, topic0)
	if err != nil {
		return nil, err
	}
	return req, validateRequest(req)
}

// decodeStructured decodes a log through the current ABI. It only succeeds
// for logs matching the current event signature.
func (ei *EventIngestor) decodeStructured(lg *ethereum.EthereumEventLog, topic0 common.Hash) (*types.DecodedRequest, error) {
	event, err := ei.abi.EventByID(topic0)
	if err != nil {
		return nil, errors.Wrap(err, "no ABI event for topic")
	}
	if event.RawName != "TaskRequested" {
		return nil, fmt.Errorf("unexpected event %s", event.RawName)
	}
	if len(lg.Topics) < 4 {
		return nil, fmt.Errorf("expected 4 topics, got %d", len(lg.Topics))
	}

	data, err := hexutil.Decode(lg.Data.Value())
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode event data")
	}
	outputData := make(map[string]interface{})
	if err := ei.abi.UnpackIntoMap(outputData, event.Name, data); err != nil {
		return nil, errors.Wrap(err, "failed to unpack event data")
	}
	taskType, ok := outputData["taskType"].(uint8)
	if !ok {
		return nil, fmt.Errorf("failed to parse task type")
	}

	return &types.DecodedRequest{
		TaskId:          common.HexToHash(lg.Topics[1].Value()).Big().Uint64(),
		Requester:       addressFromTopic(lg.Topics[2]),
		Subject:         addressFromTopic(lg.Topics[3]),
		Type:            types.TaskType(taskType),
		BlockNumber:     lg.BlockNumber.Value(),
		LogIndex:        lg.LogIndex.Value(),
		TransactionHash: lg.TransactionHash.Value(),
	}, nil
}

// decodeRaw matches topic-0 against the signature table and extracts fields
// positionally. Logs under the legacy signature carry no type byte and
// default to balance-check.
func (ei *EventIngestor) decodeRaw(lg *ethereum.EthereumEventLog, topic0 common.Hash) (*types.DecodedRequest, error) {
	sig, ok := signatures.LookupRequestTopic(topic0)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEventSignature, "topic %s", topic0.Hex())
	}
	if len(lg.Topics) < 4 {
		return nil, fmt.Errorf("%s signature expects 4 topics, got %d", sig.Version, len(lg.Topics))
	}

	taskType := sig.DefaultType
	if sig.HasTypeData {
		data, err := hexutil.Decode(lg.Data.Value())
		if err != nil || len(data) == 0 {
			return nil, fmt.Errorf("%s signature expects a type byte in data", sig.Version)
		}
		taskType = types.TaskType(data[len(data)-1])
	}

	return &types.DecodedRequest{
		TaskId:          common.HexToHash(lg.Topics[1].Value()).Big().Uint64(),
		Requester:       addressFromTopic(lg.Topics[2]),
		Subject:         addressFromTopic(lg.Topics[3]),
		Type:            taskType,
		BlockNumber:     lg.BlockNumber.Value(),
		LogIndex:        lg.LogIndex.Value(),
		TransactionHash: lg.TransactionHash.Value(),
	}, nil
}

// addressFromTopic strips the 12 bytes of zero padding an indexed address
// carries in a 32-byte topic word.
func addressFromTopic(topic ethereum.EthereumHexString) common.Address {
	return common.BytesToAddress(common.HexToHash(topic.Value()).Bytes()[12:])
}

func validateRequest(req *types.DecodedRequest) error {
	if req.TaskId == 0 {
		return fmt.Errorf("request has zero task id")
	}
	if req.Requester == (common.Address{}) {
		return fmt.Errorf("request %d has empty requester", req.TaskId)
	}
	if req.Subject == (common.Address{}) {
		return fmt.Errorf("request %d has empty subject", req.TaskId)
	}
	return nil
}
