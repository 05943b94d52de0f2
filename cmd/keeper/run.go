package main

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/Layr-Labs/trust-task/pkg/blockCursor"
	"github.com/Layr-Labs/trust-task/pkg/clients/ethereum"
	"github.com/Layr-Labs/trust-task/pkg/completionSubmitter"
	"github.com/Layr-Labs/trust-task/pkg/config"
	"github.com/Layr-Labs/trust-task/pkg/contractCaller/caller"
	"github.com/Layr-Labs/trust-task/pkg/eventIngestor"
	"github.com/Layr-Labs/trust-task/pkg/keeper"
	"github.com/Layr-Labs/trust-task/pkg/keeperConfig"
	"github.com/Layr-Labs/trust-task/pkg/logger"
	"github.com/Layr-Labs/trust-task/pkg/oracleEvaluator"
	"github.com/Layr-Labs/trust-task/pkg/requestLedger"
	"github.com/Layr-Labs/trust-task/pkg/shutdown"
	"github.com/Layr-Labs/trust-task/pkg/taskDispatcher"
	"github.com/Layr-Labs/trust-task/pkg/transactionSigner"
	"github.com/Layr-Labs/trust-task/pkg/types"
	"github.com/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the keeper",
	RunE: func(cmd *cobra.Command, args []string) error {
		initRunCmd(cmd)

		log, _ := logger.NewLogger(&logger.LoggerConfig{Debug: Config.Debug})
		sugar := log.Sugar()

		if err := Config.Validate(); err != nil {
			sugar.Errorw("Invalid configuration", "error", err)
			return err
		}

		sugar.Infow("Starting keeper...")

		return runWithShutdown(func(ctx context.Context) error {
			return startKeeper(ctx, Config, log)
		}, log)
	},
}

func initRunCmd(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := viper.BindPFlag(config.KebabToSnakeCase(f.Name), f); err != nil {
			fmt.Printf("Failed to bind flag '%s': %+v\n", f.Name, err)
		}
		if err := viper.BindEnv(f.Name); err != nil {
			fmt.Printf("Failed to bind env '%s': %+v\n", f.Name, err)
		}
	})
}

func runWithShutdown(startFunc func(ctx context.Context) error, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := startFunc(ctx); err != nil {
		return err
	}

	gracefulShutdownNotifier := shutdown.CreateGracefulShutdownChannel()
	done := make(chan bool)

	go shutdown.ListenForShutdown(gracefulShutdownNotifier, done, func() {
		logger.Sugar().Info("Shutting down keeper...")
		cancel()
	}, 5*time.Second, logger)

	<-done
	return nil
}

// ledgerFundingChecker reports the ledger contract's native balance for the
// submitter's pre-distribution diagnostics.
type ledgerFundingChecker struct {
	client  *ethereum.Client
	address string
}

func (lfc *ledgerFundingChecker) DistributionBalance(ctx context.Context) (*big.Int, error) {
	return lfc.client.GetBalance(ctx, lfc.address)
}

func startKeeper(ctx context.Context, cfg *keeperConfig.KeeperConfig, log *zap.Logger) error {
	ledgerClient := ethereum.NewEthereumClient(&ethereum.EthereumClientConfig{
		BaseUrl: cfg.LedgerChain.RpcURL,
	}, log)
	mainnetClient := ethereum.NewEthereumClient(&ethereum.EthereumClientConfig{
		BaseUrl: cfg.MainnetChain.RpcURL,
	}, log)

	ledgerEthClient, err := ledgerClient.GetEthereumContractCaller()
	if err != nil {
		return errors.Wrap(err, "failed to connect to the ledger chain")
	}

	signingContext, err := transactionSigner.NewSigningContext(ctx, ledgerEthClient, log)
	if err != nil {
		return errors.Wrap(err, "failed to create signing context")
	}
	signer, err := transactionSigner.NewPrivateKeySigner(cfg.PrivateKey, signingContext)
	if err != nil {
		return errors.Wrap(err, "failed to create transaction signer")
	}

	contractCaller, err := caller.NewContractCaller(ledgerEthClient, cfg.LedgerContractAddress, signer, log)
	if err != nil {
		return errors.Wrap(err, "failed to create contract caller")
	}

	// Refuse to start as the wrong identity rather than burn gas on
	// completions the ledger will reject.
	onChainKeeper, err := contractCaller.GetKeeper(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read the designated keeper from the ledger")
	}
	if onChainKeeper != signer.GetFromAddress() {
		return errors.Errorf("signing identity %s is not the designated keeper %s",
			signer.GetFromAddress().Hex(), onChainKeeper.Hex())
	}

	dispatcher := taskDispatcher.NewTaskDispatcher(log)
	dispatcher.Register(types.TaskTypeBalanceCheck, oracleEvaluator.NewBalanceCheckEvaluator(mainnetClient, log))
	dispatcher.Register(types.TaskTypeTokenDistribution, oracleEvaluator.NewDistributionEligibilityEvaluator(mainnetClient, log))

	ingestor, err := eventIngestor.NewEventIngestor(ledgerClient, cfg.LedgerContractAddress, log)
	if err != nil {
		return errors.Wrap(err, "failed to create event ingestor")
	}

	submitter := completionSubmitter.NewCompletionSubmitter(contractCaller, log,
		completionSubmitter.WithFundingChecker(&ledgerFundingChecker{
			client:  ledgerClient,
			address: cfg.LedgerContractAddress,
		}, requestLedger.DefaultDistributionAmount),
	)

	k := keeper.NewKeeper(ledgerClient, ingestor, dispatcher, submitter, blockCursor.NewCursor(), &keeper.KeeperConfig{
		PollInterval: cfg.PollInterval(),
	}, log)

	go func() {
		if err := k.Start(ctx); err != nil {
			log.Sugar().Fatalw("Keeper start failed", zap.Error(err))
		}
	}()

	return nil
}
