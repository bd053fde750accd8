// ==============================================================================
// CONFIG PACKAGE - pkg/config/config.go
// ==============================================================================
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Log        LogConfig
	Server     ServerConfig
	Network    NetworkConfig
	Prover     ProverConfig
	Swap       SwapConfig
	Compliance ComplianceConfig
	TravelRule TravelRuleConfig
	Storage    StorageConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Audit      AuditConfig
}

type LogConfig struct {
	Level string
}

// ServerConfig is used by the prover service.
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type NetworkConfig struct {
	RPCURL     string
	Commitment string
}

type ProverConfig struct {
	// Backend is one of noop, groth16, remote.
	Backend string
	URL     string
	Timeout time.Duration
	KeyDir  string
}

type SwapConfig struct {
	QuoteURL           string
	Timeout            time.Duration
	DefaultSlippageBps int
	RelayerFeeLamports int64
}

type ComplianceConfig struct {
	// USDDivisor converts smallest-unit amounts to USD.
	USDDivisor decimal.Decimal
	// KYCTierLimits are the USD upper bounds of levels 0, 1 and 2.
	KYCTierLimits        []decimal.Decimal
	DefaultDailyLimit    decimal.Decimal
	DefaultMonthlyLimit  decimal.Decimal
	UnverifiedLimit      decimal.Decimal
	DefaultThresholdUSD  decimal.Decimal
	DefaultTokenValidity time.Duration
}

type TravelRuleConfig struct {
	VASPOrigin      string
	VASPBeneficiary string
}

type StorageConfig struct {
	// Backend is one of memory, leveldb, redis, postgres.
	Backend       string
	Namespace     string
	Path          string
	EncryptionKey string
	// SyncWrites forces an fsync per write on the leveldb backend.
	SyncWrites bool
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type AuditConfig struct {
	CredentialSecret string
	Issuer           string
}

// LoadDotEnv reads .env style files into the process environment. Missing
// files are ignored; variables already set win.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func Load() *Config {
	return &Config{
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8090"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Network: NetworkConfig{
			RPCURL:     getEnv("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
			Commitment: getEnv("SOLANA_COMMITMENT", "confirmed"),
		},
		Prover: ProverConfig{
			Backend: strings.ToLower(getEnv("PROVER_BACKEND", "noop")),
			URL:     getEnv("PROVER_URL", "http://localhost:8090"),
			Timeout: getDurationEnv("PROVER_TIMEOUT", 60*time.Second),
			KeyDir:  getEnv("PROVER_KEY_DIR", ""),
		},
		Swap: SwapConfig{
			QuoteURL:           getEnv("SWAP_QUOTE_URL", "https://quote-api.jup.ag/v6"),
			Timeout:            getDurationEnv("SWAP_TIMEOUT", 10*time.Second),
			DefaultSlippageBps: getIntEnv("SWAP_DEFAULT_SLIPPAGE_BPS", 50),
			RelayerFeeLamports: int64(getIntEnv("SWAP_RELAYER_FEE_LAMPORTS", 5000)),
		},
		Compliance: ComplianceConfig{
			USDDivisor:           getDecimalEnv("COMPLIANCE_USD_DIVISOR", decimal.New(1, 9)),
			KYCTierLimits:        getDecimalListEnv("COMPLIANCE_KYC_TIERS", []decimal.Decimal{decimal.NewFromInt(1000), decimal.NewFromInt(10000), decimal.NewFromInt(100000)}),
			DefaultDailyLimit:    getDecimalEnv("COMPLIANCE_DEFAULT_DAILY_LIMIT", decimal.NewFromInt(1000)),
			DefaultMonthlyLimit:  getDecimalEnv("COMPLIANCE_DEFAULT_MONTHLY_LIMIT", decimal.NewFromInt(10000)),
			UnverifiedLimit:      getDecimalEnv("COMPLIANCE_UNVERIFIED_LIMIT", decimal.NewFromInt(1000)),
			DefaultThresholdUSD:  getDecimalEnv("COMPLIANCE_THRESHOLD_USD", decimal.NewFromInt(1000)),
			DefaultTokenValidity: getDurationEnv("COMPLIANCE_TOKEN_VALIDITY", 30*24*time.Hour),
		},
		TravelRule: TravelRuleConfig{
			VASPOrigin:      getEnv("TRAVEL_RULE_VASP_ORIGIN", "UMBRA_VASP"),
			VASPBeneficiary: getEnv("TRAVEL_RULE_VASP_BENEFICIARY", "RECIPIENT_VASP"),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getEnv("STORAGE_BACKEND", "memory")),
			Namespace:     getEnv("STORAGE_NAMESPACE", "umbra"),
			Path:          getEnv("STORAGE_PATH", "./data/umbra.db"),
			EncryptionKey: getEnv("STORAGE_ENCRYPTION_KEY", ""),
			SyncWrites:    getBoolEnv("STORAGE_SYNC_WRITES", false),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      normalizeRedisURL(getEnv("REDIS_URL", "localhost:6379")),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Audit: AuditConfig{
			CredentialSecret: getEnv("AUDIT_CREDENTIAL_SECRET", "change-this-secret"),
			Issuer:           getEnv("AUDIT_CREDENTIAL_ISSUER", "umbra"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func normalizeRedisURL(url string) string {
	// Strip redis:// or redis+tls:// scheme if present
	if strings.HasPrefix(url, "redis+tls://") {
		return url[len("redis+tls://"):]
	}
	if strings.HasPrefix(url, "redis://") {
		return url[len("redis://"):]
	}
	return url
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultValue
}

func getDecimalEnv(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}

// getDecimalListEnv parses a comma separated list; any bad entry discards
// the whole value.
func getDecimalListEnv(key string, defaultValue []decimal.Decimal) []decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]decimal.Decimal, 0, len(parts))
	for _, p := range parts {
		d, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			return defaultValue
		}
		out = append(out, d)
	}
	return out
}
