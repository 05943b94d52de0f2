package transactionSigner

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ITransactionSigner signs and submits ledger transactions and waits for
// them to be mined.
type ITransactionSigner interface {
	// GetTransactOpts returns options for building unsigned transactions.
	GetTransactOpts(ctx context.Context) (*bind.TransactOpts, error)

	// SignAndSendTransaction signs a prepared transaction, sends it and
	// blocks until one confirmation.
	SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)

	// GetFromAddress returns the signing identity.
	GetFromAddress() common.Address
}
