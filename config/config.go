package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSecretKey is the built-in token signing key. It is NOT suitable
// for production; the server logs a warning at startup until SECRET_KEY
// is overridden.
const DefaultSecretKey = "your-secret-key"

const defaultTokenTTLMinutes = 30

// Audit backend selectors for Config.Audit.Backend.
const (
	AuditBackendNone     = ""
	AuditBackendRabbitMQ = "rabbitmq"
	AuditBackendPubSub   = "pubsub"
)

// Config is the immutable process-wide configuration, built once at
// startup and passed explicitly to the components that need it.
type Config struct {
	ServerPort int
	Database   DatabaseConfig
	Auth       AuthConfig
	Audit      AuditConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// AuthConfig holds the signing key, session parameters, and feature
// toggles for the authentication layer.
type AuthConfig struct {
	SecretKey           string
	TokenTTL            time.Duration
	EmailAuthEnabled    bool
	RegistrationEnabled bool
	InviteCodeEnabled   bool
	InviteCode          string
}

// UsingDefaultSecret reports whether the insecure built-in signing key
// is in use.
func (a AuthConfig) UsingDefaultSecret() bool {
	return a.SecretKey == DefaultSecretKey
}

// AuditConfig selects and configures the audit-event broker.
type AuditConfig struct {
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	PrefetchCount   int
	QueueDurable    bool
	QueueAutoDelete bool
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "panel"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "panel_db"),
		UseSSL:   getEnvBool("DB_SSL", false),
	}

	authConfig := AuthConfig{
		SecretKey:           getEnv("SECRET_KEY", DefaultSecretKey),
		TokenTTL:            time.Duration(getEnvInt("TOKEN_TTL_MINUTES", defaultTokenTTLMinutes)) * time.Minute,
		EmailAuthEnabled:    getEnvBool("EMAIL_AUTH_ENABLED", false),
		RegistrationEnabled: getEnvBool("REGISTRATION_ENABLED", true),
		InviteCodeEnabled:   getEnvBool("INVITE_CODE_ENABLED", false),
		InviteCode:          getEnv("INVITE_CODE", "default-invite-code"),
	}

	auditConfig := AuditConfig{
		Backend: strings.ToLower(getEnv("AUDIT_BACKEND", AuditBackendNone)),
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH", 0),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTODELETE", false),
		},
		PubSub: PubSubConfig{
			ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			SubscriptionSuffix: getEnv("PUBSUB_SUB_SUFFIX", "-sub"),
		},
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database:   dbConfig,
		Auth:       authConfig,
		Audit:      auditConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return strings.EqualFold(strings.TrimSpace(valueStr), "true")
	}
	return defaultValue
}
