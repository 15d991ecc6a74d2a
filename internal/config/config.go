package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Backend names accepted by BV_BACKEND
const (
	BackendSimulator = "simulator"
	BackendQiskit    = "qiskit"
)

// maxSimulatorQubits mirrors the state-vector limit of the simulator
const maxSimulatorQubits = 24

// Config holds application configuration
type Config struct {
	Port      int
	LogLevel  string
	LogPretty bool
	DevMode   bool

	Backend      string
	SimSeed      uint64
	MaxQubits    int
	DefaultShots int
	// MaxNoisyAmplitudes caps shots × 2^qubits for gate-noise runs on the simulator
	MaxNoisyAmplitudes int

	DatabasePath      string
	RetentionHours    int
	CleanupSchedule   string
	NoiseProfilesPath string

	QiskitAPIKey  string
	QiskitBaseURL string
	QiskitBackend string
}

// Load reads configuration from a .env file, if present, and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnvAsInt("PORT", 8080),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPretty:          getEnvAsBool("LOG_PRETTY", true),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		Backend:            getEnv("BV_BACKEND", BackendSimulator),
		SimSeed:            getEnvAsUint64("BV_SIM_SEED", 0),
		MaxQubits:          getEnvAsInt("BV_MAX_QUBITS", 20),
		DefaultShots:       getEnvAsInt("BV_DEFAULT_SHOTS", 1024),
		MaxNoisyAmplitudes: getEnvAsInt("BV_MAX_NOISY_AMPLITUDES", 1<<28),
		DatabasePath:       getEnvAllowEmpty("BV_DB_PATH", "./data/bv.db"),
		RetentionHours:     getEnvAsInt("BV_RETENTION_HOURS", 24),
		CleanupSchedule:    getEnv("BV_CLEANUP_SCHEDULE", "@every 1h"),
		NoiseProfilesPath:  getEnv("BV_NOISE_PROFILES", ""),
		QiskitAPIKey:       getEnv("QISKIT_API_KEY", ""),
		QiskitBaseURL:      getEnv("QISKIT_BASE_URL", ""),
		QiskitBackend:      getEnv("QISKIT_BACKEND", "ibmq_qasm_simulator"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}

	switch c.Backend {
	case BackendSimulator:
		if c.MaxQubits > maxSimulatorQubits {
			return fmt.Errorf("BV_MAX_QUBITS cannot exceed %d on the simulator, got %d", maxSimulatorQubits, c.MaxQubits)
		}
	case BackendQiskit:
		if c.QiskitAPIKey == "" {
			return fmt.Errorf("QISKIT_API_KEY is required when BV_BACKEND=qiskit")
		}
	default:
		return fmt.Errorf("BV_BACKEND must be %q or %q, got %q", BackendSimulator, BackendQiskit, c.Backend)
	}

	if c.MaxQubits < 2 {
		return fmt.Errorf("BV_MAX_QUBITS must be at least 2, got %d", c.MaxQubits)
	}
	if c.DefaultShots < 1 {
		return fmt.Errorf("BV_DEFAULT_SHOTS must be positive, got %d", c.DefaultShots)
	}
	if c.MaxNoisyAmplitudes < 1 {
		return fmt.Errorf("BV_MAX_NOISY_AMPLITUDES must be positive, got %d", c.MaxNoisyAmplitudes)
	}
	if c.RetentionHours < 1 {
		return fmt.Errorf("BV_RETENTION_HOURS must be positive, got %d", c.RetentionHours)
	}
	if c.CleanupSchedule == "" {
		return fmt.Errorf("BV_CLEANUP_SCHEDULE is required")
	}

	return nil
}

// PersistenceEnabled reports whether runs are written to SQLite
func (c *Config) PersistenceEnabled() bool {
	return c.DatabasePath != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty honours an explicitly empty value
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
