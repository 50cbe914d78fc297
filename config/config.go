package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort       string
	HealthGRPCPort string
	Environment    string

	MongoDBURL  string
	MongoDBName string
	StoreKind   string

	RedisURL      string
	RedisPassword string
	RedisDB       int

	NATSURL string

	JWTSecret []byte
	JWTExp    time.Duration

	GithubClientID     string
	GithubClientSecret string
	GithubRedirectURL  string
	FrontendURL        string

	BaseURL string

	MailHost     string
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string

	ChromePath string

	LeaderboardTimeZone string
	CORSOrigins         []string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	config := Config{
		HTTPPort:       getEnv("HTTPPORT", "8080"),
		HealthGRPCPort: getEnv("HEALTHGRPCPORT", "50056"),
		Environment:    getEnv("APP_ENV", "development"),

		MongoDBURL:  getEnv("MONGODBURL", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGODBNAME", "opengalaxy"),
		StoreKind:   getEnv("STORE", "mongo"),

		RedisURL:      getEnv("REDISURL", "localhost:6379"),
		RedisPassword: getEnv("REDISPASSWORD", ""),
		RedisDB:       getEnvAsInt("REDISDB", 0),

		NATSURL: getEnv("NATSURL", "nats://localhost:4222"),

		JWTSecret: []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:    time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,

		GithubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GithubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GithubRedirectURL:  getEnv("GITHUB_REDIRECT_URL", "http://localhost:8080/auth/github/callback"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173/welcome"),

		BaseURL: strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),

		MailHost:     getEnv("MAIL_HOST", "smtp.gmail.com"),
		MailPort:     getEnvAsInt("MAIL_PORT", 587),
		MailUsername: getEnv("MAIL_USERNAME", ""),
		MailPassword: getEnv("MAIL_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@opengalaxy.dev"),

		ChromePath: getEnv("CHROME_PATH", ""),

		LeaderboardTimeZone: getEnv("LEADERBOARD_TZ", "Asia/Kolkata"),
		CORSOrigins:         getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
	}

	return config
}

// Location resolves the leaderboard zone, falling back to UTC for unknown names.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.LeaderboardTimeZone)
	if err != nil {
		log.Printf("Unknown LEADERBOARD_TZ %q, using UTC", c.LeaderboardTimeZone)
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
