package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jaminalder/gamey/internal/engine"
	"github.com/rs/zerolog"
)

// Config holds server and engine settings. Zero fields in a file keep
// their defaults; GAMEY_* environment variables override both.
type Config struct {
	Addr              string `json:"addr"`
	LogLevel          string `json:"log_level"`
	LogFormat         string `json:"log_format"`
	BotTimeBudgetMs   int    `json:"bot_time_budget_ms"`
	DefaultBoardSize  int    `json:"default_board_size"`
	MaxBoardSize      int    `json:"max_board_size"`
	SearchMinDepth    int    `json:"search_min_depth"`
	SearchMaxDepth    int    `json:"search_max_depth"`
	ShutdownTimeoutMs int    `json:"shutdown_timeout_ms"`
}

var ErrInvalid = errors.New("invalid config")

func Default() Config {
	search := engine.DefaultSearchConfig()
	return Config{
		Addr:              ":4000",
		LogLevel:          "info",
		LogFormat:         "console",
		BotTimeBudgetMs:   1000,
		DefaultBoardSize:  7,
		MaxBoardSize:      15,
		SearchMinDepth:    search.MinDepth,
		SearchMaxDepth:    search.MaxDepth,
		ShutdownTimeoutMs: 5000,
	}
}

// Load reads path (when non-empty) over the defaults, then applies the
// environment and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"GAMEY_ADDR":       &c.Addr,
		"GAMEY_LOG_LEVEL":  &c.LogLevel,
		"GAMEY_LOG_FORMAT": &c.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	ints := map[string]*int{
		"GAMEY_BOT_TIME_BUDGET_MS":  &c.BotTimeBudgetMs,
		"GAMEY_DEFAULT_BOARD_SIZE":  &c.DefaultBoardSize,
		"GAMEY_MAX_BOARD_SIZE":      &c.MaxBoardSize,
		"GAMEY_SEARCH_MIN_DEPTH":    &c.SearchMinDepth,
		"GAMEY_SEARCH_MAX_DEPTH":    &c.SearchMaxDepth,
		"GAMEY_SHUTDOWN_TIMEOUT_MS": &c.ShutdownTimeoutMs,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalid, key, v, err)
		}
		*dst = n
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr is empty", ErrInvalid)
	case !validLevel(c.LogLevel):
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	case c.LogFormat != "console" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q", ErrInvalid, c.LogFormat)
	case c.BotTimeBudgetMs < 0:
		return fmt.Errorf("%w: bot_time_budget_ms %d", ErrInvalid, c.BotTimeBudgetMs)
	case c.MaxBoardSize < 1 || c.DefaultBoardSize < 1 || c.DefaultBoardSize > c.MaxBoardSize:
		return fmt.Errorf("%w: board sizes default=%d max=%d", ErrInvalid, c.DefaultBoardSize, c.MaxBoardSize)
	case c.SearchMinDepth < 1 || c.SearchMaxDepth < c.SearchMinDepth:
		return fmt.Errorf("%w: search depths min=%d max=%d", ErrInvalid, c.SearchMinDepth, c.SearchMaxDepth)
	case c.ShutdownTimeoutMs < 0:
		return fmt.Errorf("%w: shutdown_timeout_ms %d", ErrInvalid, c.ShutdownTimeoutMs)
	}
	return nil
}

func (c Config) BotTimeBudget() time.Duration {
	return time.Duration(c.BotTimeBudgetMs) * time.Millisecond
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMs) * time.Millisecond
}

// Search returns the engine settings derived from c.
func (c Config) Search() engine.SearchConfig {
	s := engine.DefaultSearchConfig()
	s.MinDepth = c.SearchMinDepth
	s.MaxDepth = c.SearchMaxDepth
	return s
}

func validLevel(s string) bool {
	_, err := zerolog.ParseLevel(s)
	return err == nil
}

// Logger builds the process logger described by c, writing to w.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if c.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
