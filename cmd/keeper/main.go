package main

import (
	"os"
	"strings"

	"github.com/Layr-Labs/trust-task/pkg/keeperConfig"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "keeper",
	Short: "Reconcile request-ledger tasks against mainnet facts",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var configFile string
var Config *keeperConfig.KeeperConfig

func init() {
	cobra.OnInitialize(initConfigIfPresent)

	rootCmd.PersistentFlags().StringVar(&configFile, keeperConfig.ConfigFile, "", "config file path")

	rootCmd.PersistentFlags().Bool(keeperConfig.Debug, false, `"true" or "false"`)
	rootCmd.PersistentFlags().String(keeperConfig.LedgerRpcUrl, "", "request-ledger chain RPC url")
	rootCmd.PersistentFlags().String(keeperConfig.MainnetRpcUrl, "", "mainnet RPC url")
	rootCmd.PersistentFlags().String(keeperConfig.LedgerContractAddress, "", "request ledger contract address")
	rootCmd.PersistentFlags().String(keeperConfig.PrivateKey, "", "keeper signing key (hex)")
	rootCmd.PersistentFlags().Int(keeperConfig.PollIntervalMs, keeperConfig.DefaultPollIntervalMs, "poll interval in milliseconds")

	viper.SetEnvPrefix(keeperConfig.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(runCmd)
}

func initConfigIfPresent() {
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			panic(err)
		}
		config, err := keeperConfig.NewKeeperConfigFromYamlBytes(data)
		if err != nil {
			panic(err)
		}
		Config = config
	} else {
		Config = keeperConfig.NewKeeperConfig()
	}
}

func main() {
	Execute()
}
