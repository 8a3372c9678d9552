package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Bidon15/lotteryresolver/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	testKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

// isolate clears resolver environment variables and runs the test from an
// empty directory so no stray config file is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"RPC_URL", "PRIVATE_KEY", "LOTTERY_ADDRESS",
		"RESOLVER_RPC_URL", "RESOLVER_PRIVATE_KEY", "RESOLVER_LOTTERY_ADDRESS",
		"RESOLVER_HEAD_MODE", "RESOLVER_POLL_INTERVAL", "RESOLVER_TX_TIMEOUT",
		"RESOLVER_METRICS_ADDR", "RESOLVER_LOG_LEVEL", "RESOLVER_LOG_FORMAT",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	t.Chdir(t.TempDir())
	ResetFlags()
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantContain []string
	}{
		{
			name:        "basic version",
			args:        []string{"version"},
			wantContain: []string{"resolver dev"},
		},
		{
			name:        "verbose version",
			args:        []string{"--verbose", "version"},
			wantContain: []string{"resolver", "commit:", "built:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			var buf bytes.Buffer
			SetOutput(&buf)

			err := ExecuteWithArgs(tt.args)
			require.NoError(t, err)

			output := buf.String()
			for _, want := range tt.wantContain {
				assert.Contains(t, output, want)
			}
		})
	}
}

func TestRootCommand_Help(t *testing.T) {
	isolate(t)
	var buf bytes.Buffer
	SetOutput(&buf)

	err := ExecuteWithArgs([]string{"--help"})
	require.NoError(t, err)

	output := buf.String()
	for _, expected := range []string{
		"Resolver",
		"--rpc-url",
		"--lottery-address",
		"--head-mode",
		"--poll-interval",
		"RPC_URL",
		"PRIVATE_KEY",
		"LOTTERY_ADDRESS",
		"run",
		"config",
	} {
		assert.Contains(t, output, expected)
	}
	assert.NotContains(t, output, "--private-key")
}

func TestConfigShow(t *testing.T) {
	isolate(t)
	t.Setenv("RPC_URL", "http://127.0.0.1:8545")
	t.Setenv("PRIVATE_KEY", testKey)
	t.Setenv("LOTTERY_ADDRESS", testAddress)

	var buf bytes.Buffer
	SetOutput(&buf)

	err := ExecuteWithArgs([]string{"config", "show", "--head-mode", "poll", "--poll-interval", "2s"})
	require.NoError(t, err)

	var shown map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &shown))
	assert.Equal(t, "http://127.0.0.1:8545", shown["rpc_url"])
	assert.Equal(t, testAddress, shown["lottery_address"])
	assert.Equal(t, "poll", shown["head_mode"])
	assert.Equal(t, "2s", shown["poll_interval"])
	assert.NotContains(t, buf.String(), testKey)
}

func TestConfigShow_FromFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"rpc_url: http://node:8545",
		"private_key: " + testKey,
		"lottery_address: " + testAddress,
		"log_format: json",
	}, "\n")), 0600))

	var buf bytes.Buffer
	SetOutput(&buf)

	err := ExecuteWithArgs([]string{"config", "show", "--config", path, "--rpc-url", "http://flag:8545"})
	require.NoError(t, err)

	var shown config.Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &shown))
	assert.Equal(t, "http://flag:8545", shown.RPCURL, "flags win over the file")
	assert.Equal(t, "json", shown.LogFormat)
}

func TestConfigShow_Invalid(t *testing.T) {
	isolate(t)
	var buf bytes.Buffer
	SetOutput(&buf)

	err := ExecuteWithArgs([]string{"config", "show"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingRPCURL))
	assert.Contains(t, buf.String(), "private_key: (not set)")
}

func TestRun_FailsFastWithoutConfig(t *testing.T) {
	isolate(t)
	var buf bytes.Buffer
	SetOutput(&buf)

	err := ExecuteWithArgs([]string{"run"})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingRPCURL)
	assert.ErrorIs(t, err, config.ErrMissingPrivateKey)
	assert.ErrorIs(t, err, config.ErrMissingLotteryAddress)
}

func TestRun_RejectsBadAddress(t *testing.T) {
	isolate(t)
	t.Setenv("RPC_URL", "http://127.0.0.1:8545")
	t.Setenv("PRIVATE_KEY", testKey)

	var buf bytes.Buffer
	SetOutput(&buf)

	err := ExecuteWithArgs([]string{"run", "--lottery-address", "0xnothex"})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidLotteryAddress)
}

func TestRun_UnreachableEndpoint(t *testing.T) {
	isolate(t)
	t.Setenv("RPC_URL", "http://127.0.0.1:1")
	t.Setenv("PRIVATE_KEY", testKey)
	t.Setenv("LOTTERY_ADDRESS", testAddress)

	var buf bytes.Buffer
	SetOutput(&buf)

	err := ExecuteWithArgs([]string{"run"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain id")
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"run", "version", "config"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
