package ethereum

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type EthereumClientConfig struct {
	BaseUrl string
}

// Client is a thin wrapper around the Ethereum JSON-RPC API covering the
// read surface the keeper needs: chain height, raw logs and balances. The
// underlying rpc.Client is also exposed as an ethclient.Client for
// contract-bound calls.
type Client struct {
	config *EthereumClientConfig
	logger *zap.Logger

	mu        sync.Mutex
	rpcClient *rpc.Client
}

func NewEthereumClient(config *EthereumClientConfig, logger *zap.Logger) *Client {
	return &Client{
		config: config,
		logger: logger,
	}
}

func (c *Client) getRpcClient(ctx context.Context) (*rpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rpcClient != nil {
		return c.rpcClient, nil
	}
	client, err := rpc.DialContext(ctx, c.config.BaseUrl)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", c.config.BaseUrl)
	}
	c.rpcClient = client
	return client, nil
}

// GetLatestBlock returns the current chain height.
func (c *Client) GetLatestBlock(ctx context.Context) (uint64, error) {
	client, err := c.getRpcClient(ctx)
	if err != nil {
		return 0, err
	}
	var result EthereumQuantity
	if err := client.CallContext(ctx, &result, "eth_blockNumber"); err != nil {
		return 0, errors.Wrap(err, "failed to get latest block number")
	}
	return result.Value(), nil
}

type logFilter struct {
	Address   string     `json:"address"`
	FromBlock string     `json:"fromBlock"`
	ToBlock   string     `json:"toBlock"`
	Topics    [][]string `json:"topics,omitempty"`
}

// GetLogs fetches raw logs emitted by the given contract over an inclusive
// block range. Optional topic0 values are OR-ed into the filter's first
// topic position.
func (c *Client) GetLogs(ctx context.Context, address string, fromBlock, toBlock uint64, topic0 ...string) ([]*EthereumEventLog, error) {
	client, err := c.getRpcClient(ctx)
	if err != nil {
		return nil, err
	}
	filter := logFilter{
		Address:   address,
		FromBlock: hexutil.EncodeUint64(fromBlock),
		ToBlock:   hexutil.EncodeUint64(toBlock),
	}
	if len(topic0) > 0 {
		filter.Topics = [][]string{topic0}
	}

	var logs []*EthereumEventLog
	if err := client.CallContext(ctx, &logs, "eth_getLogs", filter); err != nil {
		return nil, errors.Wrapf(err, "failed to get logs for blocks [%d, %d]", fromBlock, toBlock)
	}
	return logs, nil
}

// GetBalance returns the native balance of an address at the latest block.
func (c *Client) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	client, err := c.getRpcClient(ctx)
	if err != nil {
		return nil, err
	}
	var result hexutil.Big
	if err := client.CallContext(ctx, &result, "eth_getBalance", address, "latest"); err != nil {
		return nil, errors.Wrapf(err, "failed to get balance of %s", address)
	}
	return (*big.Int)(&result), nil
}

// GetEthereumContractCaller returns an ethclient view of the same
// connection, suitable for bound contract calls and transaction receipts.
func (c *Client) GetEthereumContractCaller() (*ethclient.Client, error) {
	client, err := c.getRpcClient(context.Background())
	if err != nil {
		return nil, err
	}
	return ethclient.NewClient(client), nil
}
