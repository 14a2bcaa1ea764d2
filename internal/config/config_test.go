package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	owner := solana.NewWallet().PublicKey().String()
	path := writeConfig(t, `
owner: "`+owner+`"
fee_bps: 250
lock_on_graduation: true
tasks_file: "configs/tasks.yaml"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, owner, cfg.Owner)
	assert.Equal(t, uint64(250), cfg.FeeBps)
	assert.True(t, cfg.LockOnGraduation)

	// Defaults fill in everything not set explicitly.
	assert.Equal(t, uint64(DefaultTotalSupply), cfg.TotalSupply)
	assert.Equal(t, uint64(DefaultVirtualSol), cfg.VirtualSol)
	assert.Equal(t, uint64(DefaultTargetPoolBalance), cfg.TargetPoolBalance)
	assert.Equal(t, DefaultEventBufferSize, cfg.EventBufferSize)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
}

func TestLoadConfigValidation(t *testing.T) {
	owner := solana.NewWallet().PublicKey().String()

	cases := []struct {
		name    string
		content string
	}{
		{"missing owner", "fee_bps: 100\n"},
		{"owner not base58", "owner: \"not-base58-0OIl\"\n"},
		{"fee above 100%", "owner: \"" + owner + "\"\nfee_bps: 10001\n"},
		{"zero supply", "owner: \"" + owner + "\"\ntotal_supply: 0\n"},
		{"zero virtual sol", "owner: \"" + owner + "\"\nvirtual_sol: 0\n"},
		{"zero target", "owner: \"" + owner + "\"\ntarget_pool_balance: 0\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
