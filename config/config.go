package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vexa/models"
)

var (
	DB        *gorm.DB
	AppConfig Config
	envLoaded bool
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type OAuthConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"-"`
	RedirectURI  string `json:"redirect_uri"`
}

type Config struct {
	Environment     string      `json:"environment"`
	ServerPort      string      `json:"server_port"`
	AppURL          string      `json:"app_url"` // base URL embedded in invitation links
	CORSOrigin      string      `json:"cors_origin"`
	JWTSecret       string      `json:"-"`
	Google          OAuthConfig `json:"google"`
	DBHost          string      `json:"db_host"`
	DBPort          string      `json:"db_port"`
	DBUser          string      `json:"db_user"`
	DBPassword      string      `json:"-"`
	DBName          string      `json:"db_name"`
	DBSSLMode       string      `json:"db_ssl_mode"`
	DBMaxIdleConns  int         `json:"db_max_idle_conns"`
	DBMaxOpenConns  int         `json:"db_max_open_conns"`
	SMTPHost        string      `json:"smtp_host"`
	SMTPPort        int         `json:"smtp_port"`
	SMTPUsername    string      `json:"smtp_username"`
	SMTPPassword    string      `json:"-"`
	FromEmail       string      `json:"from_email"`
	SentryDSN       string      `json:"-"`
	RateLimitInvite int         `json:"rate_limit_invite"`
	Redis           RedisConfig `json:"redis"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

func LoadConfig() error {
	AppConfig = Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8700"),
		AppURL:      getEnv("APP_URL", "http://localhost:3000"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "http://localhost:3000"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		Google: OAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		},
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "vexa"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 465),
		SMTPUsername: getEnv("EMAIL_USERNAME", ""),
		SMTPPassword: getEnv("EMAIL_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", ""),

		SentryDSN:       getEnv("SENTRY_DSN", ""),
		RateLimitInvite: getEnvAsInt("RATE_LIMIT_INVITE", 10),
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ADDRESS", "") != "",
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	// Validate required configurations
	if AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if AppConfig.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if AppConfig.Environment == "production" {
		if AppConfig.SMTPUsername == "" || AppConfig.SMTPPassword == "" {
			return fmt.Errorf("SMTP credentials are required in production")
		}
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	log.Println("Using connection string:", maskPassword(dsn))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("✅ Successfully connected to the database")
	log.Println("🔄 Starting database migration...")
	if err := migrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("✅ Database migration completed")
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		log.Printf("⚠️ Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("🔧 Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Database: %s@%s:%s/%s",
		AppConfig.DBUser,
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBName)
	log.Printf("SMTP: %s:%d (%s)", AppConfig.SMTPHost, AppConfig.SMTPPort, AppConfig.SMTPUsername)
	log.Printf("Redis rate limiting: %t", AppConfig.Redis.Enabled)
}

func migrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProject{},
		&models.Notification{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Work{},
		&models.Invitation{},
		&models.ChatMessage{},
	)
}
