package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// TempDirEnv names the only environment setting: where transient PDF files live.
const TempDirEnv = "DOCNORM_TEMP_DIR"

type Config struct {
	TempDir string

	FetchTimeout   time.Duration
	ParseTimeout   time.Duration
	MaxConcurrent  int   // concurrent PDF parses
	MaxUploadBytes int64 // also caps fetched bodies
	ListenAddr     string
	BatchParallel  int
	RequestLogging bool
}

func Defaults() Config {
	return Config{
		TempDir:        filepath.Join(os.TempDir(), "docnorm"),
		FetchTimeout:   30 * time.Second,
		ParseTimeout:   60 * time.Second,
		MaxConcurrent:  4,
		MaxUploadBytes: 32 << 20,
		ListenAddr:     ":8080",
		BatchParallel:  4,
		RequestLogging: true,
	}
}

// Load returns Defaults with TempDir taken from the environment, after
// loading a .env file from the working directory if one exists.
func Load() Config {
	_ = godotenv.Load()

	cfg := Defaults()
	if dir, ok := os.LookupEnv(TempDirEnv); ok && dir != "" {
		cfg.TempDir = dir
	}
	return cfg
}

// EnsureTempDir creates TempDir if needed.
func (c Config) EnsureTempDir() error {
	return os.MkdirAll(c.TempDir, 0755)
}
