package caller

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/Layr-Labs/trust-task/pkg/requestLedger"
	"github.com/Layr-Labs/trust-task/pkg/signatures"
	"github.com/Layr-Labs/trust-task/pkg/transactionSigner"
	"github.com/Layr-Labs/trust-task/pkg/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ContractCaller talks to the deployed request ledger through a bound
// contract, signing completions with the keeper identity.
type ContractCaller struct {
	boundContract *bind.BoundContract
	abi           *abi.ABI
	ledgerAddress common.Address
	ethclient     *ethclient.Client
	signer        transactionSigner.ITransactionSigner
	logger        *zap.Logger
}

func NewContractCaller(
	ethclient *ethclient.Client,
	ledgerAddress string,
	signer transactionSigner.ITransactionSigner,
	logger *zap.Logger,
) (*ContractCaller, error) {
	ledgerABI, err := signatures.RequestLedgerABI()
	if err != nil {
		return nil, err
	}

	address := common.HexToAddress(ledgerAddress)
	boundContract := bind.NewBoundContract(address, *ledgerABI, ethclient, ethclient, ethclient)

	return &ContractCaller{
		boundContract: boundContract,
		abi:           ledgerABI,
		ledgerAddress: address,
		ethclient:     ethclient,
		signer:        signer,
		logger:        logger,
	}, nil
}

// CompleteTask submits the completion transaction and blocks until it is
// mined. Revert reasons are mapped onto the requestLedger error taxonomy.
func (cc *ContractCaller) CompleteTask(ctx context.Context, taskId uint64, result bool) error {
	noSendTxOpts, err := cc.signer.GetTransactOpts(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to build transaction options")
	}

	tx, err := cc.boundContract.Transact(noSendTxOpts, "completeTask", new(big.Int).SetUint64(taskId), result)
	if err != nil {
		return mapLedgerError(errors.Wrapf(err, "failed to create completeTask transaction for task %d", taskId))
	}

	receipt, err := cc.signer.SignAndSendTransaction(ctx, tx)
	if err != nil {
		return mapLedgerError(errors.Wrapf(err, "failed to send completeTask transaction for task %d", taskId))
	}

	cc.logger.Sugar().Infow("Completed task on ledger",
		zap.Uint64("taskId", taskId),
		zap.Bool("result", result),
		zap.String("transactionHash", receipt.TxHash.Hex()),
	)
	return nil
}

func (cc *ContractCaller) GetTask(ctx context.Context, taskId uint64) (*requestLedger.Task, error) {
	var out []interface{}
	err := cc.boundContract.Call(&bind.CallOpts{Context: ctx}, &out, "getTask", new(big.Int).SetUint64(taskId))
	if err != nil {
		return nil, mapLedgerError(errors.Wrapf(err, "failed to get task %d", taskId))
	}
	if len(out) != 8 {
		return nil, errors.Errorf("getTask returned %d values, expected 8", len(out))
	}

	id, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.New("failed to parse task id")
	}
	createdAt, ok := out[6].(*big.Int)
	if !ok {
		return nil, errors.New("failed to parse task createdAt")
	}
	completedAt, ok := out[7].(*big.Int)
	if !ok {
		return nil, errors.New("failed to parse task completedAt")
	}

	return &requestLedger.Task{
		Id:          id.Uint64(),
		Requester:   out[1].(common.Address),
		Subject:     out[2].(common.Address),
		Type:        types.TaskType(out[3].(uint8)),
		State:       requestLedger.TaskState(out[4].(uint8)),
		Result:      out[5].(bool),
		CreatedAt:   time.Unix(createdAt.Int64(), 0),
		CompletedAt: time.Unix(completedAt.Int64(), 0),
	}, nil
}

func (cc *ContractCaller) GetTaskResult(ctx context.Context, taskId uint64) (bool, error) {
	var out []interface{}
	err := cc.boundContract.Call(&bind.CallOpts{Context: ctx}, &out, "getTaskResult", new(big.Int).SetUint64(taskId))
	if err != nil {
		return false, mapLedgerError(errors.Wrapf(err, "failed to get result of task %d", taskId))
	}
	result, ok := out[0].(bool)
	if !ok {
		return false, errors.New("failed to parse task result")
	}
	return result, nil
}

func (cc *ContractCaller) GetKeeper(ctx context.Context) (common.Address, error) {
	var out []interface{}
	err := cc.boundContract.Call(&bind.CallOpts{Context: ctx}, &out, "keeper")
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to get keeper")
	}
	keeper, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, errors.New("failed to parse keeper address")
	}
	return keeper, nil
}

// revertReasons maps the ledger contract's revert strings onto the shared
// sentinel errors.
var revertReasons = []struct {
	fragment string
	sentinel error
}{
	{"NotAuthorized", requestLedger.ErrUnauthorized},
	{"caller is not the keeper", requestLedger.ErrUnauthorized},
	{"TaskNotFound", requestLedger.ErrTaskNotFound},
	{"TaskAlreadyCompleted", requestLedger.ErrAlreadyCompleted},
	{"TaskNotCompleted", requestLedger.ErrNotCompleted},
	{"InsufficientBalance", requestLedger.ErrInsufficientBalance},
	{"TransferFailed", requestLedger.ErrTransferFailed},
}

func mapLedgerError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, reason := range revertReasons {
		if strings.Contains(msg, reason.fragment) {
			return errors.Wrap(reason.sentinel, msg)
		}
	}
	return err
}
