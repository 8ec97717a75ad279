package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the pipeline.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Paths    PathsConfig
	Batch    BatchConfig
	Auth     AuthConfig
	Delivery DeliveryConfig
	Postgres PostgresConfig
}

// AppConfig identifies the running process.
type AppConfig struct {
	Name string
	Env  string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// PathsConfig locates the extracted input files and output directories.
type PathsConfig struct {
	TicketsFile          string
	OrganizationsFile    string
	SubmittersFile       string
	AssigneesFile        string
	CommentsIndexFile    string
	TimeEntriesIndexFile string
	OutputDir            string
	ErrorDir             string
	DeliveryLogDir       string
}

// BatchConfig controls transform batching and parallelism.
type BatchConfig struct {
	Size    int
	Workers int
}

// AuthConfig holds the destination authentication endpoint credentials.
type AuthConfig struct {
	URL          string
	ClientID     string
	ClientSecret string
}

// DeliveryConfig controls the delivery pass against the destination API.
type DeliveryConfig struct {
	URL             string
	IntegrationUUID uuid.UUID
	Workers         int
	MaxRetries      int
	RetryBackoffMS  int
	LogPrefix       string
}

// PostgresConfig holds the optional outcome-store connection values.
// An empty DSN disables the store; the CSV sink always runs.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// Load reads configuration from environment variables, applying
// defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	integrationUUID, err := uuid.Parse(getEnv("INTEGRATION_UUID", "00000000-0000-0000-0000-000000000000"))
	if err != nil {
		return nil, fmt.Errorf("invalid INTEGRATION_UUID: %w", err)
	}

	batchSize := getEnvAsInt("BATCH_SIZE", 500)
	if batchSize <= 0 {
		return nil, fmt.Errorf("BATCH_SIZE must be positive, got %d", batchSize)
	}

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "zendesk-etl-pipeline"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Paths: PathsConfig{
			TicketsFile:          getEnv("TICKETS_FILE", "extract/tickets_processed.json"),
			OrganizationsFile:    getEnv("ORGANIZATIONS_FILE", "extract/organizations.csv"),
			SubmittersFile:       getEnv("SUBMITTERS_FILE", "extract/submitter_ids.csv"),
			AssigneesFile:        getEnv("ASSIGNEES_FILE", "extract/assignee_ids.csv"),
			CommentsIndexFile:    getEnv("COMMENTS_INDEX_FILE", "extract/comments_extracted.csv"),
			TimeEntriesIndexFile: getEnv("TIME_ENTRIES_INDEX_FILE", "extract/time_metrics_extracted.csv"),
			OutputDir:            getEnv("OUTPUT_DIR", "transformation/output"),
			ErrorDir:             getEnv("ERROR_DIR", "transformation/errors"),
			DeliveryLogDir:       getEnv("DELIVERY_LOG_DIR", "ingestion_logs"),
		},
		Batch: BatchConfig{
			Size:    batchSize,
			Workers: getEnvAsInt("TRANSFORM_WORKERS", 2),
		},
		Auth: AuthConfig{
			URL:          getEnv("AUTH_URL", ""),
			ClientID:     getEnv("CLIENT_ID", ""),
			ClientSecret: getEnv("CLIENT_SECRET", ""),
		},
		Delivery: DeliveryConfig{
			URL:             getEnv("TICKET_API_URL", ""),
			IntegrationUUID: integrationUUID,
			Workers:         getEnvAsInt("DELIVERY_WORKERS", 20),
			MaxRetries:      getEnvAsInt("DELIVERY_MAX_RETRIES", 3),
			RetryBackoffMS:  getEnvAsInt("DELIVERY_RETRY_BACKOFF_MS", 500),
			LogPrefix:       getEnv("DELIVERY_LOG_PREFIX", "api_logs"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
