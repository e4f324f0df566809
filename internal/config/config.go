package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Completion providers.
const (
	ProviderOpenAI = "openai" // bearer API key
	ProviderGonka  = "gonka"  // secp256k1-signed requests
)

// WalletCfg holds the credentials for a single Gonka wallet.
type WalletCfg struct {
	PrivateKey string // hex secp256k1 private key (with or without 0x)
	Address    string // bech32 requester address (derived if empty)
}

// StageCfg holds the sampling parameters of one classification stage.
type StageCfg struct {
	MaxTokens   int
	Temperature float64
}

// Cfg holds the gateway configuration loaded from environment variables.
type Cfg struct {
	// Completion service
	Provider string        // COMPLETION_PROVIDER=openai|gonka
	APIKey   string        // OPENAI_API_KEY, required for openai
	BaseURL  string        // COMPLETION_BASE_URL, e.g. https://api.openai.com/v1
	Model    string        // COMPLETION_MODEL
	Timeout  time.Duration // COMPLETION_TIMEOUT, bounds each completion call

	// Gonka signed requests
	Wallets         []WalletCfg
	TransferAddress string // GONKA_TRANSFER_ADDRESS

	// Pipeline stages
	Filter    StageCfg // FILTER_MAX_TOKENS, FILTER_TEMPERATURE
	Sentiment StageCfg // SENTIMENT_MAX_TOKENS, SENTIMENT_TEMPERATURE

	// Server
	ListenAddr string // e.g. :8080
	LogLevel   slog.Level
}

// FrontendCfg holds the presentation client configuration.
type FrontendCfg struct {
	GatewayAddr string        // GATEWAY_ADDRESS (falls back to IP_ADDRESS)
	Timeout     time.Duration // GATEWAY_TIMEOUT
	ListenAddr  string        // FRONTEND_PORT
	LogLevel    slog.Level
}

// Load reads .env (if present) then environment variables and returns the
// gateway Cfg.
func Load() (*Cfg, error) {
	// Best-effort: load .env from current directory
	_ = godotenv.Load()

	cfg := &Cfg{
		Provider: strings.ToLower(envOr("COMPLETION_PROVIDER", ProviderOpenAI)),
		APIKey:   env("OPENAI_API_KEY"),
		Model:    envOr("COMPLETION_MODEL", "gpt-3.5-turbo"),
	}

	// Base URL: prefer COMPLETION_BASE_URL, fall back to OPENAI_BASE_URL.
	baseURL := env("COMPLETION_BASE_URL")
	if baseURL == "" {
		baseURL = env("OPENAI_BASE_URL")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	cfg.BaseURL = strings.TrimRight(baseURL, "/")

	var err error
	if cfg.Timeout, err = envDuration("COMPLETION_TIMEOUT", 4*time.Second); err != nil {
		return nil, err
	}
	if cfg.Filter, err = loadStage("FILTER", StageCfg{MaxTokens: 3, Temperature: 0.1}); err != nil {
		return nil, err
	}
	if cfg.Sentiment, err = loadStage("SENTIMENT", StageCfg{MaxTokens: 1, Temperature: 0.1}); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY must be set for provider %q", cfg.Provider)
		}
	case ProviderGonka:
		if cfg.Wallets, err = loadWallets(); err != nil {
			return nil, err
		}
		cfg.TransferAddress = env("GONKA_TRANSFER_ADDRESS")
		if cfg.TransferAddress == "" {
			return nil, fmt.Errorf("GONKA_TRANSFER_ADDRESS must be set for provider %q", cfg.Provider)
		}
	default:
		return nil, fmt.Errorf("unknown COMPLETION_PROVIDER %q", cfg.Provider)
	}

	cfg.ListenAddr = ":" + envOr("PORT", "8080")
	cfg.LogLevel = parseLevel(env("LOG_LEVEL"))
	return cfg, nil
}

// LoadFrontend reads .env (if present) then environment variables and
// returns the presentation client configuration.
func LoadFrontend() (*FrontendCfg, error) {
	_ = godotenv.Load()

	// IP_ADDRESS is the variable name the original frontend used.
	addr := env("GATEWAY_ADDRESS")
	if addr == "" {
		addr = env("IP_ADDRESS")
	}
	if addr == "" {
		addr = "localhost:8080"
	}

	timeout, err := envDuration("GATEWAY_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	return &FrontendCfg{
		GatewayAddr: addr,
		Timeout:     timeout,
		ListenAddr:  ":" + envOr("FRONTEND_PORT", "8501"),
		LogLevel:    parseLevel(env("LOG_LEVEL")),
	}, nil
}

func loadStage(prefix string, def StageCfg) (StageCfg, error) {
	st := def
	if raw := env(prefix + "_MAX_TOKENS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return st, fmt.Errorf("%s_MAX_TOKENS must be a positive integer, got %q", prefix, raw)
		}
		st.MaxTokens = n
	}
	if raw := env(prefix + "_TEMPERATURE"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 || f > 2 {
			return st, fmt.Errorf("%s_TEMPERATURE must be a number in [0,2], got %q", prefix, raw)
		}
		st.Temperature = f
	}
	return st, nil
}

// loadWallets builds the wallet list from environment variables.
//
// Multi-wallet format (GONKA_WALLETS):
//
//	GONKA_WALLETS=privkey1:addr1,privkey2:addr2,privkey3
//
// Single-wallet fallback:
//
//	GONKA_PRIVATE_KEY=... GONKA_ADDRESS=...
func loadWallets() ([]WalletCfg, error) {
	if multi := env("GONKA_WALLETS"); multi != "" {
		return parseMultiWallets(multi)
	}

	pk := env("GONKA_PRIVATE_KEY")
	if pk == "" {
		return nil, fmt.Errorf("either GONKA_WALLETS or GONKA_PRIVATE_KEY must be set")
	}
	return []WalletCfg{{PrivateKey: pk, Address: env("GONKA_ADDRESS")}}, nil
}

// parseMultiWallets parses "key1:addr1,key2:addr2,key3" into WalletCfg slices.
func parseMultiWallets(raw string) ([]WalletCfg, error) {
	var wallets []WalletCfg
	for i, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pk, addr, _ := strings.Cut(part, ":")
		pk = strings.TrimSpace(pk)
		if pk == "" {
			return nil, fmt.Errorf("wallet entry %d has empty private key", i+1)
		}
		wallets = append(wallets, WalletCfg{PrivateKey: pk, Address: strings.TrimSpace(addr)})
	}
	if len(wallets) == 0 {
		return nil, fmt.Errorf("GONKA_WALLETS is set but contains no valid entries")
	}
	return wallets, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envOr(key, def string) string {
	if v := env(key); v != "" {
		return v
	}
	return def
}

// envDuration accepts Go durations ("4s") or bare seconds ("4").
func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		raw = fmt.Sprintf("%gs", secs)
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, os.Getenv(key))
	}
	return d, nil
}

func parseLevel(raw string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
