package keeperConfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	validJson = `
{
	"ledgerChain": {
		"name": "ledger",
		"chainId": 31337,
		"rpcUrl": "http://localhost:8545"
	},
	"mainnetChain": {
		"name": "mainnet",
		"chainId": 1,
		"rpcUrl": "https://mainnet.infura.io/v3/YOUR_INFURA_PROJECT_ID"
	},
	"ledgerContractAddress": "0x3000000000000000000000000000000000000003",
	"privateKey": "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
	"pollIntervalMs": 5000
}`
	invalidJson = `
{
	"ledgerChain": {
		"name": 5679,
		"chainId": 31337,
		"rpcUrl": "http://localhost:8545"
	}
}`

	validYaml = `
---
ledgerChain:
  name: ledger
  chainId: 31337
  rpcUrl: http://localhost:8545
mainnetChain:
  name: mainnet
  chainId: 1
  rpcUrl: https://mainnet.infura.io/v3/YOUR_INFURA_PROJECT_ID
ledgerContractAddress: "0x3000000000000000000000000000000000000003"
privateKey: "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
pollIntervalMs: 5000
`
	invalidYaml = `
---
ledgerChain:
  name: ledger
  chainId: True
  rpcUrl: http://localhost:8545
`
)

func Test_KeeperConfig(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		t.Run("Should create a new keeper config from a json string", func(t *testing.T) {
			c, err := NewKeeperConfigFromJsonBytes([]byte(validJson))
			assert.Nil(t, err)
			assert.NotNil(t, c)
			assert.Nil(t, c.Validate())
			assert.Equal(t, 5*time.Second, c.PollInterval())
		})
		t.Run("Should fail to create a new keeper config from an invalid json string", func(t *testing.T) {
			c, err := NewKeeperConfigFromJsonBytes([]byte(invalidJson))
			assert.NotNil(t, err)
			assert.Nil(t, c)
		})
	})
	t.Run("YAML", func(t *testing.T) {
		t.Run("Should create a new keeper config from a yaml string", func(t *testing.T) {
			c, err := NewKeeperConfigFromYamlBytes([]byte(validYaml))
			assert.Nil(t, err)
			assert.NotNil(t, c)
			assert.Nil(t, c.Validate())
		})
		t.Run("Should fail to create a new keeper config from an invalid yaml string", func(t *testing.T) {
			c, err := NewKeeperConfigFromYamlBytes([]byte(invalidYaml))
			assert.NotNil(t, err)
			assert.Nil(t, c)
		})
	})
	t.Run("Validate", func(t *testing.T) {
		t.Run("Should reject a missing private key", func(t *testing.T) {
			c, err := NewKeeperConfigFromJsonBytes([]byte(validJson))
			assert.Nil(t, err)
			c.PrivateKey = ""
			assert.NotNil(t, c.Validate())
		})
		t.Run("Should reject a malformed ledger contract address", func(t *testing.T) {
			c, err := NewKeeperConfigFromJsonBytes([]byte(validJson))
			assert.Nil(t, err)
			c.LedgerContractAddress = "not-an-address"
			assert.NotNil(t, c.Validate())
		})
		t.Run("Should name the failing chain field", func(t *testing.T) {
			c, err := NewKeeperConfigFromJsonBytes([]byte(validJson))
			assert.Nil(t, err)
			c.MainnetChain.RpcURL = ""
			verr := c.Validate()
			assert.NotNil(t, verr)
			assert.Contains(t, verr.Error(), "mainnetChain.rpcUrl")
		})
		t.Run("Should reject a non-positive poll interval", func(t *testing.T) {
			c, err := NewKeeperConfigFromJsonBytes([]byte(validJson))
			assert.Nil(t, err)
			c.PollIntervalMs = 0
			assert.NotNil(t, c.Validate())
		})
	})
}
