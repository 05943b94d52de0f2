package transactionSigner

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SigningContext carries the chain connection and identity shared by
// signer implementations.
type SigningContext struct {
	ethClient *ethclient.Client
	logger    *zap.Logger
	chainID   *big.Int
}

func NewSigningContext(ctx context.Context, ethClient *ethclient.Client, logger *zap.Logger) (*SigningContext, error) {
	chainID, err := ethClient.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain ID")
	}

	return &SigningContext{
		ethClient: ethClient,
		logger:    logger,
		chainID:   chainID,
	}, nil
}
