package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv             string
	HTTPAddr           string
	GinMode            string
	CORSAllowedOrigins []string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	SessionSecret     string
	JWTSecret         string
	AccessTokenCookie string

	QueueDriver            string
	EmailQueueKey          string
	EmailWorkerConcurrency int
	EmailMaxAttempts       int
	EmailDLQRetryInterval  time.Duration

	EmailProvider  string
	SendgridAPIKey string
	EmailFrom      string
	EmailFromName  string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string

	AWSRegion        string
	S3PosterBucket   string
	S3PublicBaseURL  string
	ElasticURL       string
	ElasticIndex     string
	LogLevel         string
	LogFormat        string
	LogDevelopment   bool
	DispatchWorkers  int
	InteractionDedup time.Duration
}

// Load reads configuration from the environment, after loading an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	return &Config{
		AppEnv:             v.GetString("APP_ENV"),
		HTTPAddr:           v.GetString("HTTP_ADDR"),
		GinMode:            v.GetString("GIN_MODE"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),

		DBDriver:   v.GetString("DB_DRIVER"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		SessionSecret:     v.GetString("SESSION_SECRET"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		AccessTokenCookie: v.GetString("ACCESS_TOKEN_COOKIE"),

		QueueDriver:            v.GetString("QUEUE_DRIVER"),
		EmailQueueKey:          v.GetString("EMAIL_QUEUE_KEY"),
		EmailWorkerConcurrency: v.GetInt("EMAIL_WORKER_CONCURRENCY"),
		EmailMaxAttempts:       v.GetInt("EMAIL_MAX_ATTEMPTS"),
		EmailDLQRetryInterval:  v.GetDuration("EMAIL_DLQ_RETRY_INTERVAL"),

		EmailProvider:  v.GetString("EMAIL_PROVIDER"),
		SendgridAPIKey: v.GetString("SENDGRID_API_KEY"),
		EmailFrom:      v.GetString("EMAIL_FROM"),
		EmailFromName:  v.GetString("EMAIL_FROM_NAME"),
		SMTPHost:       v.GetString("SMTP_HOST"),
		SMTPPort:       v.GetInt("SMTP_PORT"),
		SMTPUsername:   v.GetString("SMTP_USERNAME"),
		SMTPPassword:   v.GetString("SMTP_PASSWORD"),

		AWSRegion:        v.GetString("AWS_REGION"),
		S3PosterBucket:   v.GetString("S3_POSTER_BUCKET"),
		S3PublicBaseURL:  v.GetString("S3_PUBLIC_BASE_URL"),
		ElasticURL:       v.GetString("ELASTIC_URL"),
		ElasticIndex:     v.GetString("ELASTIC_INTERACTION_INDEX"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
		LogDevelopment:   v.GetBool("LOG_DEVELOPMENT"),
		DispatchWorkers:  v.GetInt("DISPATCH_CONCURRENCY"),
		InteractionDedup: v.GetDuration("INTERACTION_DEDUP_WINDOW"),
	}
}

// RedisAddr returns host:port for the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "devzoku")
	v.SetDefault("DB_PASSWORD", "devzoku")
	v.SetDefault("DB_NAME", "devzoku")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_SECRET", "default-secret-key-change-me")
	v.SetDefault("JWT_SECRET", "default-jwt-secret-change-me")
	v.SetDefault("ACCESS_TOKEN_COOKIE", "accessToken")

	v.SetDefault("QUEUE_DRIVER", "redis")
	v.SetDefault("EMAIL_QUEUE_KEY", "devzoku:email:jobs")
	v.SetDefault("EMAIL_WORKER_CONCURRENCY", 5)
	v.SetDefault("EMAIL_MAX_ATTEMPTS", 3)
	v.SetDefault("EMAIL_DLQ_RETRY_INTERVAL", "5m")

	v.SetDefault("EMAIL_PROVIDER", "smtp")
	v.SetDefault("EMAIL_FROM", "no-reply@devzoku.dev")
	v.SetDefault("EMAIL_FROM_NAME", "DevZoku")
	v.SetDefault("SMTP_PORT", 587)

	v.SetDefault("AWS_REGION", "ap-south-1")
	v.SetDefault("ELASTIC_INTERACTION_INDEX", "user_interactions_v1")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DISPATCH_CONCURRENCY", 16)
	v.SetDefault("INTERACTION_DEDUP_WINDOW", "10m")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
