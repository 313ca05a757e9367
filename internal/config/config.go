package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	EmailDevMode   bool // echo issued codes in API responses; forced on in development
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	MaxUploadBytes int64

	DynamoMaxAttempts int // per-call attempts including retries; 0 keeps the SDK default

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	GoogleClientID string

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPFromName string
	SMTPUsername string
	SMTPPassword string
	MailRetries  uint64
	MailTimeout  time.Duration

	SNSRegion      string
	SMSEnabled     bool
	AllowedOrigins []string // CORS allowed origins, also used for WebSocket origin checks

	VerificationTTL     time.Duration
	VerificationSweep   time.Duration
	SocketRequireAuth   bool
	SocketSendBuffer    int
	LocationRatePerSec  float64
	LocationRateBurst   int
	SocketWriteTimeout  time.Duration
	DeadLetterRetention time.Duration
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users          string
	Orders         string
	Vouchers       string
	MenuItems      string
	DeadLetters    string
	SupportTickets string
	StoreHours     string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	appEnv := getEnv("APP_ENV", "development")
	return &Config{
		AppPort:        getEnv("APP_PORT", "5000"),
		AppEnv:         appEnv,
		EmailDevMode:   appEnv == "development" || getEnvBool("EMAIL_DEV_MODE", false),
		AWSRegion:      getEnv("AWS_REGION", "ap-southeast-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:          getEnv("DYNAMO_TABLE_USERS", "users"),
			Orders:         getEnv("DYNAMO_TABLE_ORDERS", "orders"),
			Vouchers:       getEnv("DYNAMO_TABLE_VOUCHERS", "vouchers"),
			MenuItems:      getEnv("DYNAMO_TABLE_MENU_ITEMS", "menu_items"),
			DeadLetters:    getEnv("DYNAMO_TABLE_EMAIL_DEAD_LETTERS", "email_dead_letters"),
			SupportTickets: getEnv("DYNAMO_TABLE_SUPPORT_TICKETS", "support_tickets"),
			StoreHours:     getEnv("DYNAMO_TABLE_STORE_HOURS", "store_hours"),
		},
		S3BucketName:   getEnv("S3_BUCKET_NAME", "kusina-menu-images"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),

		DynamoMaxAttempts: getEnvInt("DYNAMO_MAX_ATTEMPTS", 5),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@kusina.local"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Kusina"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailRetries:  uint64(getEnvInt("MAIL_RETRIES", 3)),
		MailTimeout:  getEnvDuration("MAIL_TIMEOUT", 30*time.Second),

		SNSRegion:      getEnv("SNS_REGION", "ap-southeast-1"),
		SMSEnabled:     getEnvBool("SMS_ENABLED", false),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		VerificationTTL:     getEnvDuration("VERIFICATION_TTL", 10*time.Minute),
		VerificationSweep:   getEnvDuration("VERIFICATION_SWEEP_INTERVAL", 5*time.Minute),
		SocketRequireAuth:   getEnvBool("SOCKET_REQUIRE_AUTH", false),
		SocketSendBuffer:    getEnvInt("SOCKET_SEND_BUFFER", 64),
		LocationRatePerSec:  getEnvFloat("LOCATION_RATE_PER_SEC", 1),
		LocationRateBurst:   getEnvInt("LOCATION_RATE_BURST", 3),
		SocketWriteTimeout:  getEnvDuration("SOCKET_WRITE_TIMEOUT", 10*time.Second),
		DeadLetterRetention: getEnvDuration("DEAD_LETTER_RETENTION", 7*24*time.Hour),
	}
}

// IsDevelopment reports whether the service runs with APP_ENV=development.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings such as "10m" or "168h".
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
