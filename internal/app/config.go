package app

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the application's startup configuration: where to read
// service definitions from and where the daemon should listen.
type Config struct {
	Debug bool

	// ConfigPath points at a single YAML configuration file. Required —
	// unlike the teacher's layered user/project/default search, this
	// daemon always starts from one explicit file.
	ConfigPath string

	// DataDir holds the daemon's persistent state: the BadgerDB registry
	// (when Persistent is set) and the self-signed TLS certificate pair.
	DataDir string

	// Persistent selects the BadgerDB-backed registry over the in-memory
	// one, so service state and task history survive a daemon restart.
	Persistent bool

	ListenHost      string
	ListenPort      int
	MonitoringAddr  string
	RegenerateCerts bool

	ShutdownTimeout time.Duration
}

// NewConfig returns a Config with the daemon's defaults applied, ready for
// a caller (cmd/serve.go) to override from flags.
func NewConfig(configPath string) *Config {
	return &Config{
		ConfigPath:      configPath,
		DataDir:         defaultDataDir(),
		ListenHost:      "0.0.0.0",
		ListenPort:      9443,
		MonitoringAddr:  "127.0.0.1:9444",
		ShutdownTimeout: 10 * time.Second,
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "harness")
	}
	return "./harness-data"
}
