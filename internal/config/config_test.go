package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gatewayVars = []string{
	"COMPLETION_PROVIDER", "OPENAI_API_KEY", "COMPLETION_BASE_URL", "OPENAI_BASE_URL",
	"COMPLETION_MODEL", "COMPLETION_TIMEOUT",
	"FILTER_MAX_TOKENS", "FILTER_TEMPERATURE", "SENTIMENT_MAX_TOKENS", "SENTIMENT_TEMPERATURE",
	"GONKA_WALLETS", "GONKA_PRIVATE_KEY", "GONKA_ADDRESS", "GONKA_TRANSFER_ADDRESS",
	"PORT", "LOG_LEVEL",
	"GATEWAY_ADDRESS", "IP_ADDRESS", "GATEWAY_TIMEOUT", "FRONTEND_PORT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range gatewayVars {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Model)
	assert.Equal(t, 4*time.Second, cfg.Timeout)
	assert.Equal(t, StageCfg{MaxTokens: 3, Temperature: 0.1}, cfg.Filter)
	assert.Equal(t, StageCfg{MaxTokens: 1, Temperature: 0.1}, cfg.Sentiment)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1/")
	t.Setenv("COMPLETION_MODEL", "qwen2.5:0.5b")
	t.Setenv("COMPLETION_TIMEOUT", "2.5")
	t.Setenv("FILTER_MAX_TOKENS", "5")
	t.Setenv("FILTER_TEMPERATURE", "0")
	t.Setenv("SENTIMENT_TEMPERATURE", "0.7")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434/v1", cfg.BaseURL)
	assert.Equal(t, "qwen2.5:0.5b", cfg.Model)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, StageCfg{MaxTokens: 5, Temperature: 0}, cfg.Filter)
	assert.Equal(t, StageCfg{MaxTokens: 1, Temperature: 0.7}, cfg.Sentiment)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing api key":      {},
		"unknown provider":     {"COMPLETION_PROVIDER": "azure", "OPENAI_API_KEY": "k"},
		"bad timeout":          {"OPENAI_API_KEY": "k", "COMPLETION_TIMEOUT": "soon"},
		"zero max tokens":      {"OPENAI_API_KEY": "k", "SENTIMENT_MAX_TOKENS": "0"},
		"temperature too high": {"OPENAI_API_KEY": "k", "FILTER_TEMPERATURE": "3"},
		"gonka without wallet": {"COMPLETION_PROVIDER": "gonka", "GONKA_TRANSFER_ADDRESS": "gonka1x"},
		"gonka without transfer address": {
			"COMPLETION_PROVIDER": "gonka", "GONKA_PRIVATE_KEY": "abc",
		},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_GonkaWallets(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPLETION_PROVIDER", "Gonka")
	t.Setenv("GONKA_TRANSFER_ADDRESS", "gonka1transfer")
	t.Setenv("GONKA_WALLETS", " key1:gonka1a , key2 ,, key3:")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGonka, cfg.Provider)
	assert.Equal(t, "gonka1transfer", cfg.TransferAddress)
	assert.Equal(t, []WalletCfg{
		{PrivateKey: "key1", Address: "gonka1a"},
		{PrivateKey: "key2"},
		{PrivateKey: "key3"},
	}, cfg.Wallets)
}

func TestParseMultiWallets_Errors(t *testing.T) {
	_, err := parseMultiWallets(":gonka1a")
	assert.Error(t, err)

	_, err = parseMultiWallets(" , ")
	assert.Error(t, err)
}

func TestLoadFrontend(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)
		cfg, err := LoadFrontend()
		require.NoError(t, err)
		assert.Equal(t, "localhost:8080", cfg.GatewayAddr)
		assert.Equal(t, 15*time.Second, cfg.Timeout)
		assert.Equal(t, ":8501", cfg.ListenAddr)
	})

	t.Run("falls back to IP_ADDRESS", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("IP_ADDRESS", "10.0.0.5:8000")
		cfg, err := LoadFrontend()
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.5:8000", cfg.GatewayAddr)
	})

	t.Run("GATEWAY_ADDRESS wins", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("IP_ADDRESS", "10.0.0.5:8000")
		t.Setenv("GATEWAY_ADDRESS", "gateway:8080")
		cfg, err := LoadFrontend()
		require.NoError(t, err)
		assert.Equal(t, "gateway:8080", cfg.GatewayAddr)
	})
}
