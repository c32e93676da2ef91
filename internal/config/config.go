package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/dinari-africa/dinari-ledger/pkg/dinari"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	// Token configuration
	TokenName       string
	TokenSymbol     string
	DeployerAddress string
	InitialSupply   *big.Int
	// Initial fiat rates, base units per token (1e18 = 1.0)
	RateUSD *big.Int
	RateNGN *big.Int
	RateKES *big.Int

	// SMTP configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string

	// Operator alert configuration
	TelegramBotToken string
	TelegramChatID   string
	OperatorEmail    string
	AlertThreshold   *big.Int
	JournalBuffer    int
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:      getEnvAsBool("DEVELOPMENT", false),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", "dinari"),
		TokenName:        getEnv("TOKEN_NAME", "Dinari"),
		TokenSymbol:      getEnv("TOKEN_SYMBOL", "DNR"),
		DeployerAddress:  getEnv("DEPLOYER_ADDRESS", ""),
		InitialSupply:    getEnvAsBigInt("INITIAL_SUPPLY", new(big.Int)),
		RateUSD:          getEnvAsBigInt("RATE_USD", big.NewInt(1e18)),
		RateNGN:          getEnvAsBigInt("RATE_NGN", nil),
		RateKES:          getEnvAsBigInt("RATE_KES", nil),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		OperatorEmail:    getEnv("OPERATOR_EMAIL", ""),
		AlertThreshold:   getEnvAsBigInt("ALERT_THRESHOLD", nil),
		JournalBuffer:    getEnvAsInt("JOURNAL_BUFFER", 1024),
		SMTPHost:         getEnv("SMTP_HOST", "smtp.example.com"),
		SMTPPort:         getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SMTPSender:       getEnv("SMTP_SENDER", ""),

		APIPort: getEnvAsInt("API_PORT", 6532),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.DeployerAddress == "" {
		return fmt.Errorf("DEPLOYER_ADDRESS is required")
	}

	if err := dinari.ValidateAddress(c.DeployerAddress); err != nil {
		return fmt.Errorf("invalid DEPLOYER_ADDRESS format: %w", err)
	}

	if c.InitialSupply == nil || c.InitialSupply.Sign() < 0 {
		return fmt.Errorf("INITIAL_SUPPLY must be zero or positive")
	}

	if c.PostgresDB == "" {
		return fmt.Errorf("POSTGRES_DB is required")
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}

	return nil
}

// InitialRates collects the configured fiat rates, skipping unset currencies.
func (c *Config) InitialRates() map[string]*big.Int {
	rates := make(map[string]*big.Int)
	if c.RateUSD != nil {
		rates["USD"] = c.RateUSD
	}
	if c.RateNGN != nil {
		rates["NGN"] = c.RateNGN
	}
	if c.RateKES != nil {
		rates["KES"] = c.RateKES
	}
	return rates
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBigInt(name string, defaultValue *big.Int) *big.Int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, ok := new(big.Int).SetString(valueStr, 10); ok {
			return value
		}
	}
	return defaultValue
}
