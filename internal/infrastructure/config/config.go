// Package config assembles runtime settings from defaults, an optional json5
// file (plus its .local override), a .env file and the environment. CLI flags
// are applied on top by the caller.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/example/srt-reserver/internal/infrastructure/notify"
	"github.com/example/srt-reserver/internal/infrastructure/srt"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"
)

const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
)

type Config struct {
	LoginURL  string `json:"login_url"`
	SearchURL string `json:"search_url"`

	Driver      string `json:"driver"`
	BrowserPath string `json:"browser_path"`
	Headless    *bool  `json:"headless"`
	DebugPort   int    `json:"debug_port"`

	WaitTimeoutSec int `json:"wait_timeout_seconds"`
	RefreshMinMs   int `json:"refresh_min_ms"`
	RefreshMaxMs   int `json:"refresh_max_ms"`
	BookSettleMs   int `json:"book_settle_ms"`

	TelegramToken  string `json:"telegram_token"`
	TelegramChatID string `json:"telegram_chat_id"`
	TelegramAPI    string `json:"telegram_api"`

	SMTPAddr     string   `json:"smtp_addr"`
	SMTPUsername string   `json:"smtp_username"`
	SMTPPassword string   `json:"smtp_password"`
	SMTPFrom     string   `json:"smtp_from"`
	SMTPTo       []string `json:"smtp_to"`

	DatabaseURL string `json:"database_url"`

	VaultPath     string `json:"vault_path"`
	VaultHashKey  string `json:"vault_hash_key"`  // base64
	VaultBlockKey string `json:"vault_block_key"` // base64

	StatusAddr           string `json:"status_addr"`
	StatusPasswordBcrypt string `json:"status_password_bcrypt"`

	Verbose bool `json:"verbose"`
}

func Defaults() Config {
	headless := true
	return Config{
		LoginURL:       srt.DefaultLoginURL,
		SearchURL:      srt.DefaultSearchURL,
		Driver:         DriverPlaywright,
		Headless:       &headless,
		DebugPort:      9222,
		WaitTimeoutSec: 10,
		RefreshMinMs:   2000,
		RefreshMaxMs:   4000,
		BookSettleMs:   1000,
		TelegramAPI:    notify.DefaultTelegramAPI,
		VaultPath:      defaultVaultPath(),
	}
}

// FromEnv loads .env when present and reads the config file named by
// SRTRES_CONFIG, if any.
func FromEnv() (Config, error) {
	return Load(os.Getenv("SRTRES_CONFIG"))
}

// Load layers defaults < file (path, then path's .local sibling) < environment.
// An empty path skips the file layer.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()
	if path != "" {
		file, err := ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		if err := mergo.Merge(&cfg, file, mergo.WithOverride); err != nil {
			return Config{}, err
		}
		overridePointers(&cfg, file)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ReadFile reads name and merges <base>.local.<ext> over it. Either file may
// be missing, not both.
func ReadFile(name string) (Config, error) {
	var out Config
	found := false

	b, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(b) > 0 {
		if err := json5.Unmarshal(b, &out); err != nil {
			return out, err
		}
		found = true
	}

	local := localName(name)
	b, err = os.ReadFile(local)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(b) > 0 {
		var override Config
		if err := json5.Unmarshal(b, &override); err != nil {
			return out, err
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, err
		}
		overridePointers(&out, override)
		slog.Debug("merging config with local overrides", "local", local)
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

// overridePointers copies pointer fields that src sets. mergo treats a
// pointer to false as empty and would keep dst's value.
func overridePointers(dst *Config, src Config) {
	if src.Headless != nil {
		headless := *src.Headless
		dst.Headless = &headless
	}
}

func localName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

func applyEnv(cfg *Config) error {
	cfg.LoginURL = envDefault("SRT_LOGIN_URL", cfg.LoginURL)
	cfg.SearchURL = envDefault("SRT_SEARCH_URL", cfg.SearchURL)
	cfg.Driver = envDefault("SRTRES_DRIVER", cfg.Driver)
	cfg.BrowserPath = envDefault("BROWSER_PATH", cfg.BrowserPath)
	cfg.TelegramToken = envDefault("TELEGRAM_TOKEN", cfg.TelegramToken)
	cfg.TelegramChatID = envDefault("TELEGRAM_CHAT_ID", cfg.TelegramChatID)
	cfg.TelegramAPI = envDefault("TELEGRAM_API", cfg.TelegramAPI)
	cfg.SMTPAddr = envDefault("SMTP_ADDR", cfg.SMTPAddr)
	cfg.SMTPUsername = envDefault("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = envDefault("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SMTPFrom = envDefault("SMTP_FROM", cfg.SMTPFrom)
	cfg.DatabaseURL = envDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.VaultPath = envDefault("VAULT_PATH", cfg.VaultPath)
	cfg.VaultHashKey = envDefault("VAULT_HASH_KEY", cfg.VaultHashKey)
	cfg.VaultBlockKey = envDefault("VAULT_BLOCK_KEY", cfg.VaultBlockKey)
	cfg.StatusAddr = envDefault("STATUS_ADDR", cfg.StatusAddr)
	cfg.StatusPasswordBcrypt = envDefault("STATUS_PASSWORD_BCRYPT", cfg.StatusPasswordBcrypt)

	if v := strings.TrimSpace(os.Getenv("SMTP_TO")); v != "" {
		cfg.SMTPTo = nil
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				cfg.SMTPTo = append(cfg.SMTPTo, addr)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("HEADLESS")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS: %w", err)
		}
		cfg.Headless = &b
	}
	if v := strings.TrimSpace(os.Getenv("SRTRES_VERBOSE")); v != "" {
		cfg.Verbose = v == "1" || strings.EqualFold(v, "true")
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"DEBUG_PORT", &cfg.DebugPort},
		{"WAIT_TIMEOUT_SECONDS", &cfg.WaitTimeoutSec},
		{"REFRESH_MIN_MS", &cfg.RefreshMinMs},
		{"REFRESH_MAX_MS", &cfg.RefreshMaxMs},
		{"BOOK_SETTLE_MS", &cfg.BookSettleMs},
	}
	for _, e := range ints {
		v := strings.TrimSpace(os.Getenv(e.key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s", e.key)
		}
		*e.dst = n
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Driver {
	case DriverPlaywright, DriverChromedp:
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", c.Driver, DriverPlaywright, DriverChromedp)
	}
	if c.WaitTimeoutSec < 1 {
		return fmt.Errorf("wait timeout must be >= 1 second")
	}
	if c.RefreshMinMs < 0 || c.RefreshMaxMs < c.RefreshMinMs {
		return fmt.Errorf("invalid refresh band %d..%d ms", c.RefreshMinMs, c.RefreshMaxMs)
	}
	if c.BookSettleMs < 0 {
		return fmt.Errorf("book settle must be >= 0")
	}
	return nil
}

func (c Config) IsHeadless() bool { return c.Headless == nil || *c.Headless }

func (c Config) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSec) * time.Second
}

func (c Config) RefreshMin() time.Duration { return time.Duration(c.RefreshMinMs) * time.Millisecond }
func (c Config) RefreshMax() time.Duration { return time.Duration(c.RefreshMaxMs) * time.Millisecond }
func (c Config) BookSettle() time.Duration { return time.Duration(c.BookSettleMs) * time.Millisecond }

// VaultKeys decodes the base64 vault keys.
func (c Config) VaultKeys() (hashKey, blockKey []byte, err error) {
	if c.VaultHashKey == "" || c.VaultBlockKey == "" {
		return nil, nil, fmt.Errorf("VAULT_HASH_KEY and VAULT_BLOCK_KEY are required (run `srtres keys`)")
	}
	hashKey, err = decodeB64(c.VaultHashKey)
	if err != nil {
		return nil, nil, fmt.Errorf("VAULT_HASH_KEY: %w", err)
	}
	blockKey, err = decodeB64(c.VaultBlockKey)
	if err != nil {
		return nil, nil, fmt.Errorf("VAULT_BLOCK_KEY: %w", err)
	}
	return hashKey, blockKey, nil
}

func envDefault(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}

func decodeB64(v string) ([]byte, error) {
	v = strings.TrimSpace(v)
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(v)
}

func defaultVaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".srtres", "vault")
	}
	return filepath.Join(dir, "srtres", "vault")
}
