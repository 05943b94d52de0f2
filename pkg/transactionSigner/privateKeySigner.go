package transactionSigner

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// PrivateKeySigner implements ITransactionSigner with a local private key.
type PrivateKeySigner struct {
	*SigningContext
	privateKey  *ecdsa.PrivateKey
	fromAddress common.Address
}

func NewPrivateKeySigner(privateKeyHex string, signingContext *SigningContext) (*PrivateKeySigner, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to get public key ECDSA")
	}

	return &PrivateKeySigner{
		SigningContext: signingContext,
		privateKey:     privateKey,
		fromAddress:    crypto.PubkeyToAddress(*publicKey),
	}, nil
}

// GetTransactOpts returns transaction options for creating unsigned
// transactions.
func (pks *PrivateKeySigner) GetTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(pks.privateKey, pks.SigningContext.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.NoSend = true
	opts.Context = ctx
	return opts, nil
}

func (pks *PrivateKeySigner) GetFromAddress() common.Address {
	return pks.fromAddress
}

// SignAndSendTransaction estimates fees and gas for the prepared
// transaction, signs it, sends it and blocks until it is mined.
func (pks *PrivateKeySigner) SignAndSendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	var fallbackGasTipCap = big.NewInt(15000000000)

	gasTipCap, err := pks.SigningContext.ethClient.SuggestGasTipCap(ctx)
	if err != nil {
		// Backend may not support eth_maxPriorityFeePerGas.
		pks.SigningContext.logger.Sugar().Debugw("SignAndSendTransaction: cannot get gasTipCap",
			"error", err.Error(),
		)
		gasTipCap = fallbackGasTipCap
	}

	header, err := pks.SigningContext.ethClient.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	// Overestimate the basefee by 3/2 to ride out fee spikes between
	// estimation and inclusion.
	overestimatedBasefee := new(big.Int).Div(new(big.Int).Mul(header.BaseFee, big.NewInt(3)), big.NewInt(2))
	gasFeeCap := new(big.Int).Add(overestimatedBasefee, gasTipCap)

	gasLimit, err := pks.SigningContext.ethClient.EstimateGas(ctx, ethereum.CallMsg{
		From:      pks.fromAddress,
		To:        tx.To(),
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
		Value:     nil,
		Data:      tx.Data(),
	})
	if err != nil {
		return nil, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(pks.privateKey, pks.SigningContext.chainID)
	if err != nil {
		return nil, fmt.Errorf("SignAndSendTransaction: cannot create transactOpts: %w", err)
	}
	opts.Context = ctx
	opts.Nonce = new(big.Int).SetUint64(tx.Nonce())
	opts.GasTipCap = gasTipCap
	opts.GasFeeCap = gasFeeCap
	opts.GasLimit = addGasBuffer(gasLimit)

	contract := bind.NewBoundContract(*tx.To(), abi.ABI{}, pks.SigningContext.ethClient, pks.SigningContext.ethClient, pks.SigningContext.ethClient)

	tx, err = contract.RawTransact(opts, tx.Data())
	if err != nil {
		return nil, fmt.Errorf("SignAndSendTransaction: failed to send txn: %w", err)
	}

	pks.SigningContext.logger.Sugar().Infow("SignAndSendTransaction: sent transaction",
		"hash", tx.Hash().Hex(),
		"gasLimit", opts.GasLimit,
	)

	receipt, err := bind.WaitMined(ctx, pks.SigningContext.ethClient, tx)
	if err != nil {
		return nil, fmt.Errorf("SignAndSendTransaction: failed to wait for transaction to mine: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", receipt.TxHash.Hex())
	}
	return receipt, nil
}

// addGasBuffer adds 20% headroom to an estimated gas limit.
func addGasBuffer(gasLimit uint64) uint64 {
	return 6 * gasLimit / 5
}
