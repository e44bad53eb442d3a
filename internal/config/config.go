package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBackendURL = "http://localhost:8001"
	keyPrefix         = "AUTOSONIC_"
)

// Config stores runtime configuration for the desktop client.
type Config struct {
	Backend BackendConfig
	Audio   AudioConfig
	Catalog CatalogConfig
	Inbox   InboxConfig
	Log     LogConfig
	Session SessionConfig

	// File is the YAML config file that was read, if any.
	File string
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
	MaxDuration     time.Duration
}

type CatalogConfig struct {
	Path string
}

type InboxConfig struct {
	Dir string
}

type LogConfig struct {
	File  string
	Level string
}

type SessionConfig struct {
	ChunkSize int
}

// Load resolves configuration. Process environment wins over .env files,
// which win over the YAML config file, which wins over defaults.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}
	configDir := filepath.Join(home, ".config", "autosonic")

	dotenv, err := readDotenv(
		strings.TrimSpace(os.Getenv("AUTOSONIC_ENV_FILE")),
		".env",
		filepath.Join(configDir, ".env"),
	)
	if err != nil {
		return Config{}, err
	}

	src := source{dotenv: dotenv}
	configFile := src.string("AUTOSONIC_CONFIG", filepath.Join(configDir, "config.yaml"))
	src.file, err = readConfigFile(configFile)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Backend: BackendConfig{
			BaseURL: src.first(DefaultBackendURL, "AUTOSONIC_BACKEND_URL", "REACT_APP_BACKEND_URL", "BACKEND_URL"),
			Timeout: time.Duration(src.int("AUTOSONIC_HTTP_TIMEOUT_MS", 30000)) * time.Millisecond,
		},
		Audio: AudioConfig{
			RecorderCommand: src.string("AUTOSONIC_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     src.string("AUTOSONIC_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     src.string("AUTOSONIC_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      src.int("AUTOSONIC_SAMPLE_RATE", 16000),
			Channels:        src.int("AUTOSONIC_CHANNELS", 1),
			MaxDuration:     time.Duration(src.int("AUTOSONIC_MAX_RECORD_SECONDS", 0)) * time.Second,
		},
		Catalog: CatalogConfig{
			Path: src.string("AUTOSONIC_CATALOG_FILE", filepath.Join(configDir, "damage_types.yaml")),
		},
		Inbox: InboxConfig{
			Dir: expandHome(src.string("AUTOSONIC_WATCH_DIR", ""), home),
		},
		Log: LogConfig{
			File:  expandHome(src.string("AUTOSONIC_LOG_FILE", ""), home),
			Level: strings.ToLower(src.string("AUTOSONIC_LOG_LEVEL", "info")),
		},
		Session: SessionConfig{
			ChunkSize: src.int("AUTOSONIC_AUDIO_CHUNK_SIZE", 4096),
		},
	}
	if src.file != nil {
		cfg.File = configFile
	}

	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 30 * time.Second
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.MaxDuration < 0 {
		cfg.Audio.MaxDuration = 0
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}
	switch cfg.Log.Level {
	case "trace", "debug", "info", "warning", "error":
	default:
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// source layers the configuration inputs for one Load call.
type source struct {
	dotenv map[string]string
	file   map[string]string
}

func (s source) lookup(key string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	if value := strings.TrimSpace(s.dotenv[key]); value != "" {
		return value
	}
	return strings.TrimSpace(s.file[key])
}

func (s source) first(fallback string, keys ...string) string {
	for _, key := range keys {
		if value := s.lookup(key); value != "" {
			return value
		}
	}
	return fallback
}

func (s source) string(key string, fallback string) string {
	return s.first(fallback, key)
}

func (s source) int(key string, fallback int) int {
	value := s.lookup(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// readDotenv merges the existing .env files; earlier paths win.
func readDotenv(paths ...string) (map[string]string, error) {
	merged := map[string]string{}
	for _, path := range paths {
		if path == "" {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for key, value := range values {
			if _, ok := merged[key]; !ok {
				merged[key] = value
			}
		}
	}
	return merged, nil
}

// readConfigFile reads a flat YAML mapping such as "sample_rate: 22050".
// Keys map to their AUTOSONIC_ variable. A missing file yields nil.
func readConfigFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		if value == nil {
			continue
		}
		name := strings.ToUpper(strings.TrimSpace(key))
		if !strings.HasPrefix(name, keyPrefix) {
			name = keyPrefix + name
		}
		values[name] = fmt.Sprint(value)
	}
	return values, nil
}

func expandHome(path string, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
