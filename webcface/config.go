package webcface

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const LibName = "go"
const LibVersion = "0.1.0"

const DefaultHost = "127.0.0.1"
const DefaultPort = 7530

type ClientSettings struct {
	LibName          string
	LibVersion       string
	HandshakeTimeout time.Duration
	ReconnectTimeout time.Duration
	// interval of websocket pings when nothing else is sent
	PingTimeout  time.Duration
	WriteTimeout time.Duration
	// extended by every pong. 0 disables the read deadline.
	ReadTimeout time.Duration
	// how long `Close` waits for queued messages to be written
	CloseTimeout time.Duration
	// log lines kept per field. < 0 keeps everything.
	KeepLogLines int
	// nil dials a websocket
	Dial DialFunc
}

func DefaultClientSettings() *ClientSettings {
	return &ClientSettings{
		LibName:          LibName,
		LibVersion:       LibVersion,
		HandshakeTimeout: 2 * time.Second,
		ReconnectTimeout: 1 * time.Second,
		PingTimeout:      5 * time.Second,
		WriteTimeout:     5 * time.Second,
		ReadTimeout:      30 * time.Second,
		CloseTimeout:     1 * time.Second,
		KeepLogLines:     1000,
	}
}

// ClientConfig is a client identity and its settings loaded from a toml file.
type ClientConfig struct {
	Name     string
	Host     string
	Port     int
	Settings *ClientSettings
}

const defaultConfigPath = "~/.config/webcface/client.toml"

// LoadClientConfig parses the client config, falling back to defaults when missing.
//
//	name = "sensor"
//	host = "127.0.0.1"
//	port = 7530
//	reconnect_timeout_ms = 1000
//	keep_log_lines = 1000
func LoadClientConfig(path string) (*ClientConfig, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	cfg := &ClientConfig{
		Host:     DefaultHost,
		Port:     DefaultPort,
		Settings: DefaultClientSettings(),
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := parseClientConfig(bytes, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseClientConfig(bytes []byte, cfg *ClientConfig) error {
	var raw struct {
		Name               string `toml:"name"`
		Host               string `toml:"host"`
		Port               int    `toml:"port"`
		HandshakeTimeoutMs *int64 `toml:"handshake_timeout_ms"`
		ReconnectTimeoutMs *int64 `toml:"reconnect_timeout_ms"`
		PingTimeoutMs      *int64 `toml:"ping_timeout_ms"`
		WriteTimeoutMs     *int64 `toml:"write_timeout_ms"`
		ReadTimeoutMs      *int64 `toml:"read_timeout_ms"`
		KeepLogLines       *int   `toml:"keep_log_lines"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	cfg.Name = strings.TrimSpace(raw.Name)
	if host := strings.TrimSpace(raw.Host); host != "" {
		cfg.Host = host
	}
	if 0 < raw.Port {
		cfg.Port = raw.Port
	}

	settings := cfg.Settings
	setMillis := func(d *time.Duration, ms *int64) {
		if ms != nil {
			*d = time.Duration(*ms) * time.Millisecond
		}
	}
	setMillis(&settings.HandshakeTimeout, raw.HandshakeTimeoutMs)
	setMillis(&settings.ReconnectTimeout, raw.ReconnectTimeoutMs)
	setMillis(&settings.PingTimeout, raw.PingTimeoutMs)
	setMillis(&settings.WriteTimeout, raw.WriteTimeoutMs)
	setMillis(&settings.ReadTimeout, raw.ReadTimeoutMs)
	if raw.KeepLogLines != nil {
		settings.KeepLogLines = *raw.KeepLogLines
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
