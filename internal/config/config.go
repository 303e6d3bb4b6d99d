// Package config handles converter configuration and environment loading.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Environment variables read by LoadFromEnv.
const (
	EnvSeparator  = "AGGCSV_SEPARATOR"
	EnvBanners    = "AGGCSV_BANNERS"
	EnvStrictJSON = "AGGCSV_STRICT_JSON"
	EnvLogLevel   = "AGGCSV_LOG_LEVEL"
)

// Config holds the settings for one conversion.
type Config struct {
	Separator  rune     // field separator (default ',')
	Banners    []string // extra banner prefixes, added to the shell defaults
	StrictJSON bool     // input is plain JSON; skip shell transcript rewriting
	LogLevel   string   // log level: debug, info, warn, error (default "warn")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Separator: ',',
		LogLevel:  "warn",
	}
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Separator {
	case 0:
		return fmt.Errorf("separator must be set")
	case '"', '\n', '\r':
		return fmt.Errorf("separator %q is not allowed", c.Separator)
	}
	if c.Separator == utf8.RuneError || !utf8.ValidRune(c.Separator) {
		return fmt.Errorf("separator %U is not a valid character", c.Separator)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q: use debug, info, warn, or error", c.LogLevel)
	}
	return nil
}

// LoadFromEnv returns a copy of base with AGGCSV_* environment variables
// applied on top. Banners from the environment are appended.
func LoadFromEnv(base *Config) (*Config, error) {
	if base == nil {
		base = Default()
	}
	cfg := *base
	cfg.Banners = append([]string(nil), base.Banners...)

	if v := os.Getenv(EnvSeparator); v != "" {
		r, err := ParseSeparator(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvSeparator, err)
		}
		cfg.Separator = r
	}
	if v := os.Getenv(EnvBanners); v != "" {
		banners := strings.Split(v, ",")
		for i := range banners {
			banners[i] = strings.TrimSpace(banners[i])
		}
		cfg.Banners = append(cfg.Banners, compactNonEmpty(banners)...)
	}
	cfg.StrictJSON = parseBoolEnvDefault(EnvStrictJSON, cfg.StrictJSON)
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return &cfg, nil
}

// ParseSeparator converts user input into a separator rune. It accepts a
// single character, `\t`, a `\uXXXX` escape, or one of the names tab,
// comma, semicolon, and pipe.
func ParseSeparator(s string) (rune, error) {
	switch strings.ToLower(s) {
	case `\t`, "tab":
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	if strings.HasPrefix(s, `\u`) && len(s) == 6 {
		if n, err := strconv.ParseUint(s[2:], 16, 32); err == nil && utf8.ValidRune(rune(n)) {
			return rune(n), nil
		}
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("separator %q must be a single character", s)
	}
	return r, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
