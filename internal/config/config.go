package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-streams/internal/platform/logging"
)

const (
	minFootballAPITimeout = time.Second
	maxFootballAPITimeout = 30 * time.Second
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                           string
	ServiceName                      string
	ServiceVersion                   string
	HTTPAddr                         string
	ReadTimeout                      time.Duration
	WriteTimeout                     time.Duration
	CORSAllowedOrigins               []string
	LogLevel                         logging.Level
	FootballAPIKey                   string
	FootballAPIBaseURL               string
	FootballAPITimeout               time.Duration
	FootballAPIMaxRetries            int
	FootballAPICircuitEnabled        bool
	FootballAPICircuitFailureCount   int
	FootballAPICircuitOpenTimeout    time.Duration
	FootballAPICircuitHalfOpenMaxReq int
	MatchesCacheTTL                  time.Duration
	MatchesRangeMaxDays              int
	MatchesRangeConcurrency          int
	StreamCatalogPath                string
	RedisURL                         string
	MetricsEnabled                   bool
	DiagnosticsEnabled               bool
	WarmerEnabled                    bool
	WarmerInterval                   time.Duration
	WarmerDays                       int
	WarmerWorkers                    int
	PprofEnabled                     bool
	PprofAddr                        string
	UptraceEnabled                   bool
	UptraceDSN                       string
	UptraceLogsEnabled               bool
	PyroscopeEnabled                 bool
	PyroscopeServerAddress           string
	PyroscopeAppName                 string
	PyroscopeAuthToken               string
	PyroscopeBasicAuthUser           string
	PyroscopeBasicAuthPassword       string
	PyroscopeUploadRate              time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	diagnosticsDefault := "true"
	if appEnv == EnvProd {
		diagnosticsDefault = "false"
	}
	diagnosticsEnabled, err := strconv.ParseBool(getEnv("DIAGNOSTICS_ENABLED", diagnosticsDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse DIAGNOSTICS_ENABLED: %w", err)
	}
	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	footballAPIKey := strings.TrimSpace(getEnv("FOOTBALL_API_KEY", ""))
	if footballAPIKey == "" {
		return Config{}, fmt.Errorf("FOOTBALL_API_KEY is required")
	}
	footballAPITimeout, err := time.ParseDuration(getEnv("FOOTBALL_API_TIMEOUT", "8s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_TIMEOUT: %w", err)
	}
	if footballAPITimeout < minFootballAPITimeout || footballAPITimeout > maxFootballAPITimeout {
		return Config{}, fmt.Errorf("FOOTBALL_API_TIMEOUT must be between %s and %s", minFootballAPITimeout, maxFootballAPITimeout)
	}
	footballAPIMaxRetries, err := getEnvAsInt("FOOTBALL_API_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_MAX_RETRIES: %w", err)
	}
	if footballAPIMaxRetries < 0 {
		return Config{}, fmt.Errorf("FOOTBALL_API_MAX_RETRIES must be >= 0")
	}
	footballAPICircuitEnabled, err := strconv.ParseBool(getEnv("FOOTBALL_API_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_ENABLED: %w", err)
	}
	footballAPICircuitFailureCount, err := getEnvAsInt("FOOTBALL_API_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if footballAPICircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_API_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	footballAPICircuitOpenTimeout, err := time.ParseDuration(getEnv("FOOTBALL_API_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if footballAPICircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("FOOTBALL_API_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	footballAPICircuitHalfOpenMaxReq, err := getEnvAsInt("FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if footballAPICircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	matchesCacheTTL, err := time.ParseDuration(getEnv("MATCHES_CACHE_TTL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCHES_CACHE_TTL: %w", err)
	}
	if matchesCacheTTL <= 0 {
		return Config{}, fmt.Errorf("MATCHES_CACHE_TTL must be > 0")
	}
	matchesRangeMaxDays, err := getEnvAsInt("MATCHES_RANGE_MAX_DAYS", 7)
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCHES_RANGE_MAX_DAYS: %w", err)
	}
	if matchesRangeMaxDays < 1 {
		return Config{}, fmt.Errorf("MATCHES_RANGE_MAX_DAYS must be >= 1")
	}
	matchesRangeConcurrency, err := getEnvAsInt("MATCHES_RANGE_CONCURRENCY", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCHES_RANGE_CONCURRENCY: %w", err)
	}
	if matchesRangeConcurrency < 1 {
		return Config{}, fmt.Errorf("MATCHES_RANGE_CONCURRENCY must be >= 1")
	}

	warmerEnabled, err := strconv.ParseBool(getEnv("WARMER_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WARMER_ENABLED: %w", err)
	}
	warmerInterval, err := time.ParseDuration(getEnv("WARMER_INTERVAL", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WARMER_INTERVAL: %w", err)
	}
	if warmerInterval <= 0 {
		return Config{}, fmt.Errorf("WARMER_INTERVAL must be > 0")
	}
	warmerDays, err := getEnvAsInt("WARMER_DAYS", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse WARMER_DAYS: %w", err)
	}
	if warmerDays < 1 {
		return Config{}, fmt.Errorf("WARMER_DAYS must be >= 1")
	}
	if warmerDays > matchesRangeMaxDays {
		return Config{}, fmt.Errorf("WARMER_DAYS must be <= MATCHES_RANGE_MAX_DAYS")
	}
	warmerWorkers, err := getEnvAsInt("WARMER_WORKERS", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse WARMER_WORKERS: %w", err)
	}
	if warmerWorkers < 1 {
		return Config{}, fmt.Errorf("WARMER_WORKERS must be >= 1")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	// Responses wait on the upstream, so the write deadline has to outlast it.
	if writeTimeout <= footballAPITimeout {
		return Config{}, fmt.Errorf("APP_WRITE_TIMEOUT must be greater than FOOTBALL_API_TIMEOUT")
	}

	cfg := Config{
		AppEnv:                           appEnv,
		ServiceName:                      getEnv("APP_SERVICE_NAME", "matchday-streams-api"),
		ServiceVersion:                   getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                         resolveHTTPAddr(),
		ReadTimeout:                      readTimeout,
		WriteTimeout:                     writeTimeout,
		CORSAllowedOrigins:               splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:                         logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		FootballAPIKey:                   footballAPIKey,
		FootballAPIBaseURL:               strings.TrimSpace(getEnv("FOOTBALL_API_BASE_URL", "https://api.football-data.org/v4")),
		FootballAPITimeout:               footballAPITimeout,
		FootballAPIMaxRetries:            footballAPIMaxRetries,
		FootballAPICircuitEnabled:        footballAPICircuitEnabled,
		FootballAPICircuitFailureCount:   footballAPICircuitFailureCount,
		FootballAPICircuitOpenTimeout:    footballAPICircuitOpenTimeout,
		FootballAPICircuitHalfOpenMaxReq: footballAPICircuitHalfOpenMaxReq,
		MatchesCacheTTL:                  matchesCacheTTL,
		MatchesRangeMaxDays:              matchesRangeMaxDays,
		MatchesRangeConcurrency:          matchesRangeConcurrency,
		StreamCatalogPath:                strings.TrimSpace(getEnv("STREAM_CATALOG_PATH", "")),
		RedisURL:                         strings.TrimSpace(getEnv("REDIS_URL", "")),
		MetricsEnabled:                   metricsEnabled,
		DiagnosticsEnabled:               diagnosticsEnabled,
		WarmerEnabled:                    warmerEnabled,
		WarmerInterval:                   warmerInterval,
		WarmerDays:                       warmerDays,
		WarmerWorkers:                    warmerWorkers,
		PprofEnabled:                     pprofEnabled,
		PprofAddr:                        pprofAddr,
		UptraceEnabled:                   uptraceEnabled,
		UptraceDSN:                       uptraceDSN,
		UptraceLogsEnabled:               uptraceLogsEnabled,
		PyroscopeEnabled:                 pyroscopeEnabled,
		PyroscopeServerAddress:           pyroscopeServerAddress,
		PyroscopeAuthToken:               strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:           strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:              pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.FootballAPIBaseURL == "" {
		return Config{}, fmt.Errorf("FOOTBALL_API_BASE_URL cannot be empty")
	}

	return cfg, nil
}

// resolveHTTPAddr prefers APP_HTTP_ADDR, then the platform-provided PORT.
func resolveHTTPAddr() string {
	if addr := strings.TrimSpace(os.Getenv("APP_HTTP_ADDR")); addr != "" {
		return addr
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		return ":" + strings.TrimPrefix(port, ":")
	}
	return ":10000"
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
