package keeperConfig

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/Layr-Labs/trust-task/pkg/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"sigs.k8s.io/yaml"
)

const (
	EnvPrefix = "KEEPER_"

	Debug                 = "debug"
	ConfigFile            = "config-file"
	LedgerRpcUrl          = "ledger-rpc-url"
	MainnetRpcUrl         = "mainnet-rpc-url"
	LedgerContractAddress = "ledger-contract-address"
	PrivateKey            = "private-key"
	PollIntervalMs        = "poll-interval-ms"

	DefaultPollIntervalMs = 5000
)

// Chain describes one of the two chains the keeper talks to: the
// request-ledger chain it polls and writes verdicts to, and the mainnet it
// reads facts from.
type Chain struct {
	Name    string         `json:"name" yaml:"name"`
	ChainID config.ChainId `json:"chainId" yaml:"chainId"`
	RpcURL  string         `json:"rpcUrl" yaml:"rpcUrl"`
}

func (c *Chain) Validate(fldPath *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	if c.ChainID == 0 {
		allErrors = append(allErrors, field.Required(fldPath.Child("chainId"), "chainId is required"))
	}
	if !slices.Contains(config.SupportedChainIds, c.ChainID) {
		allErrors = append(allErrors, field.Invalid(fldPath.Child("chainId"), c.ChainID, "unsupported chainId"))
	}
	if c.RpcURL == "" {
		allErrors = append(allErrors, field.Required(fldPath.Child("rpcUrl"), "rpcUrl is required"))
	}
	return allErrors
}

type KeeperConfig struct {
	Debug bool `json:"debug" yaml:"debug"`

	LedgerChain  Chain `json:"ledgerChain" yaml:"ledgerChain"`
	MainnetChain Chain `json:"mainnetChain" yaml:"mainnetChain"`

	LedgerContractAddress string `json:"ledgerContractAddress" yaml:"ledgerContractAddress"`
	PrivateKey            string `json:"privateKey" yaml:"privateKey"`
	PollIntervalMs        int    `json:"pollIntervalMs" yaml:"pollIntervalMs"`
}

func (kc *KeeperConfig) Validate() error {
	var allErrors field.ErrorList
	allErrors = append(allErrors, kc.LedgerChain.Validate(field.NewPath("ledgerChain"))...)
	allErrors = append(allErrors, kc.MainnetChain.Validate(field.NewPath("mainnetChain"))...)
	if kc.LedgerContractAddress == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("ledgerContractAddress"), "ledgerContractAddress is required"))
	} else if !common.IsHexAddress(kc.LedgerContractAddress) {
		allErrors = append(allErrors, field.Invalid(field.NewPath("ledgerContractAddress"), kc.LedgerContractAddress, "not a valid hex address"))
	}
	if kc.PrivateKey == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("privateKey"), "privateKey is required"))
	}
	if kc.PollIntervalMs <= 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("pollIntervalMs"), kc.PollIntervalMs, "pollIntervalMs must be positive"))
	}
	return allErrors.ToAggregate()
}

func (kc *KeeperConfig) PollInterval() time.Duration {
	return time.Duration(kc.PollIntervalMs) * time.Millisecond
}

func NewKeeperConfigFromJsonBytes(data []byte) (*KeeperConfig, error) {
	var c KeeperConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal KeeperConfig from JSON")
	}
	return &c, nil
}

func NewKeeperConfigFromYamlBytes(data []byte) (*KeeperConfig, error) {
	var c KeeperConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal KeeperConfig from YAML")
	}
	return &c, nil
}

// NewKeeperConfig builds a config from bound viper flags and environment
// variables.
func NewKeeperConfig() *KeeperConfig {
	return &KeeperConfig{
		Debug: viper.GetBool(config.NormalizeFlagName(Debug)),
		LedgerChain: Chain{
			Name:    "ledger",
			ChainID: config.ChainId_EthereumAnvil,
			RpcURL:  viper.GetString(config.NormalizeFlagName(LedgerRpcUrl)),
		},
		MainnetChain: Chain{
			Name:    "mainnet",
			ChainID: config.ChainId_EthereumMainnet,
			RpcURL:  viper.GetString(config.NormalizeFlagName(MainnetRpcUrl)),
		},
		LedgerContractAddress: viper.GetString(config.NormalizeFlagName(LedgerContractAddress)),
		PrivateKey:            viper.GetString(config.NormalizeFlagName(PrivateKey)),
		PollIntervalMs:        viper.GetInt(config.NormalizeFlagName(PollIntervalMs)),
	}
}
