package eventIngestor

import (
	"context"
	"errors"
	"testing"

	"github.com/Layr-Labs/trust-task/internal/testUtils"
	"github.com/Layr-Labs/trust-task/pkg/clients/ethereum"
	"github.com/Layr-Labs/trust-task/pkg/signatures"
	"github.com/Layr-Labs/trust-task/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	ledgerAddr    = common.HexToAddress("0x3000000000000000000000000000000000000003")
	requesterAddr = common.HexToAddress("0x4000000000000000000000000000000000000004")
	subjectAddr   = common.HexToAddress("0x5000000000000000000000000000000000000005")
)

type fakeLogFetcher struct {
	logs []*ethereum.EthereumEventLog
	err  error
}

func (f *fakeLogFetcher) GetLogs(ctx context.Context, address string, fromBlock, toBlock uint64, topic0 ...string) ([]*ethereum.EthereumEventLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*ethereum.EthereumEventLog
	for _, lg := range f.logs {
		if lg.BlockNumber.Value() >= fromBlock && lg.BlockNumber.Value() <= toBlock {
			out = append(out, lg)
		}
	}
	return out, nil
}

func newTestIngestor(t *testing.T, fetcher *fakeLogFetcher) *EventIngestor {
	t.Helper()
	ingestor, err := NewEventIngestor(fetcher, ledgerAddr.Hex(), zap.NewNop())
	require.NoError(t, err)
	return ingestor
}

func TestFetchRequests_DecodesCurrentSignature(t *testing.T) {
	fetcher := &fakeLogFetcher{logs: []*ethereum.EthereumEventLog{
		testUtils.BuildCurrentRequestLog(ledgerAddr, 7, requesterAddr, subjectAddr, types.TaskTypeTokenDistribution, 100, 0),
	}}
	ingestor := newTestIngestor(t, fetcher)

	requests, dropped, err := ingestor.FetchRequests(context.Background(), 100, 100)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, requests, 1)

	req := requests[0]
	assert.Equal(t, uint64(7), req.TaskId)
	assert.Equal(t, requesterAddr, req.Requester)
	assert.Equal(t, subjectAddr, req.Subject)
	assert.Equal(t, types.TaskTypeTokenDistribution, req.Type)
	assert.Equal(t, uint64(100), req.BlockNumber)
}

// Decoding the legacy raw log and the current structured log for logically
// equivalent inputs must differ only in the task type, which defaults to
// balance-check for legacy.
func TestFetchRequests_LegacyDecodeEquivalence(t *testing.T) {
	fetcher := &fakeLogFetcher{logs: []*ethereum.EthereumEventLog{
		testUtils.BuildCurrentRequestLog(ledgerAddr, 9, requesterAddr, subjectAddr, types.TaskTypeBalanceCheck, 100, 0),
		testUtils.BuildLegacyRequestLog(ledgerAddr, 9, requesterAddr, subjectAddr, 100, 1),
	}}
	ingestor := newTestIngestor(t, fetcher)

	requests, dropped, err := ingestor.FetchRequests(context.Background(), 100, 100)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, requests, 2)

	current, legacy := requests[0], requests[1]
	assert.Equal(t, current.TaskId, legacy.TaskId)
	assert.Equal(t, current.Requester, legacy.Requester)
	assert.Equal(t, current.Subject, legacy.Subject)
	assert.Equal(t, types.TaskTypeBalanceCheck, legacy.Type)
}

func TestFetchRequests_UnknownSignatureFailsBatch(t *testing.T) {
	fetcher := &fakeLogFetcher{logs: []*ethereum.EthereumEventLog{
		testUtils.BuildCurrentRequestLog(ledgerAddr, 1, requesterAddr, subjectAddr, types.TaskTypeBalanceCheck, 100, 0),
		testUtils.BuildUnknownEventLog(ledgerAddr, 100, 1),
	}}
	ingestor := newTestIngestor(t, fetcher)

	_, _, err := ingestor.FetchRequests(context.Background(), 100, 100)
	assert.ErrorIs(t, err, ErrUnknownEventSignature)
}

func TestFetchRequests_HousekeepingEventsSkipped(t *testing.T) {
	completed := &ethereum.EthereumEventLog{
		Address: ethereum.EthereumHexString(ledgerAddr.Hex()),
		Topics: []ethereum.EthereumHexString{
			testUtils.HashTopic(signatures.TaskCompletedTopic),
			testUtils.Uint64Topic(1),
			testUtils.AddressTopic(requesterAddr),
		},
		Data:        ethereum.EthereumHexString("0x"),
		BlockNumber: ethereum.EthereumQuantity(100),
	}
	fetcher := &fakeLogFetcher{logs: []*ethereum.EthereumEventLog{
		completed,
		testUtils.BuildCurrentRequestLog(ledgerAddr, 2, requesterAddr, subjectAddr, types.TaskTypeBalanceCheck, 100, 1),
	}}
	ingestor := newTestIngestor(t, fetcher)

	requests, dropped, err := ingestor.FetchRequests(context.Background(), 100, 100)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, requests, 1)
	assert.Equal(t, uint64(2), requests[0].TaskId)
}

func TestFetchRequests_MalformedEventDroppedSiblingsSurvive(t *testing.T) {
	fetcher := &fakeLogFetcher{logs: []*ethereum.EthereumEventLog{
		// Zero task id fails validation.
		testUtils.BuildCurrentRequestLog(ledgerAddr, 0, requesterAddr, subjectAddr, types.TaskTypeBalanceCheck, 100, 0),
		// Zero subject fails validation.
		testUtils.BuildLegacyRequestLog(ledgerAddr, 3, requesterAddr, common.Address{}, 100, 1),
		testUtils.BuildCurrentRequestLog(ledgerAddr, 4, requesterAddr, subjectAddr, types.TaskTypeBalanceCheck, 100, 2),
	}}
	ingestor := newTestIngestor(t, fetcher)

	requests, dropped, err := ingestor.FetchRequests(context.Background(), 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)
	require.Len(t, requests, 1)
	assert.Equal(t, uint64(4), requests[0].TaskId)
}

func TestFetchRequests_OrderedByBlockThenLogIndex(t *testing.T) {
	fetcher := &fakeLogFetcher{logs: []*ethereum.EthereumEventLog{
		testUtils.BuildCurrentRequestLog(ledgerAddr, 12, requesterAddr, subjectAddr, types.TaskTypeBalanceCheck, 102, 0),
		testUtils.BuildCurrentRequestLog(ledgerAddr, 11, requesterAddr, subjectAddr, types.TaskTypeBalanceCheck, 101, 1),
		testUtils.BuildCurrentRequestLog(ledgerAddr, 10, requesterAddr, subjectAddr, types.TaskTypeBalanceCheck, 101, 0),
	}}
	ingestor := newTestIngestor(t, fetcher)

	requests, _, err := ingestor.FetchRequests(context.Background(), 101, 102)
	require.NoError(t, err)
	require.Len(t, requests, 3)
	assert.Equal(t, uint64(10), requests[0].TaskId)
	assert.Equal(t, uint64(11), requests[1].TaskId)
	assert.Equal(t, uint64(12), requests[2].TaskId)
}

func TestFetchRequests_TransportErrorPropagates(t *testing.T) {
	fetcher := &fakeLogFetcher{err: errors.New("connection refused")}
	ingestor := newTestIngestor(t, fetcher)

	_, _, err := ingestor.FetchRequests(context.Background(), 1, 10)
	assert.Error(t, err)
}
