package config

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config carries the service configuration, loaded from the environment.
// A .env file in the working directory is picked up automatically.
type Config struct {
	DBType     string // sqlite or postgres
	DBPath     string // sqlite file path
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	RedisAddr  string // empty runs without a cache
	KafkaAddr  string
	LedgerURL  string // ledger gateway base url
	AuthURL    string // identity provider token verification endpoint, empty runs insecure
}

func LoadConfig() *Config {
	cnf := &Config{
		DBType:     getEnv("DB_TYPE", "sqlite"),
		DBPath:     getEnv("DB_PATH", "./.db/article.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "emrgen"),
		DBPassword: getEnv("DB_PASSWORD", "emrgen"),
		DBName:     getEnv("DB_NAME", "emrgen"),
		RedisAddr:  getEnv("REDIS_ADDR", ""),
		KafkaAddr:  getEnv("KAFKA_ADDR", ""),
		LedgerURL:  getEnv("LEDGER_URL", "https://arweave.net"),
		AuthURL:    getEnv("AUTH_URL", ""),
	}

	return cnf
}

// GetDb opens the configured database connection.
func GetDb(cnf *Config) *gorm.DB {
	switch cnf.DBType {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cnf.DBHost, cnf.DBPort, cnf.DBUser, cnf.DBPassword, cnf.DBName)
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			logrus.Fatalf("error connecting to postgres: %v", err)
		}
		return db
	default:
		if err := os.MkdirAll("./.db", os.ModePerm); err != nil {
			logrus.Fatalf("error creating db directory: %v", err)
		}
		db, err := gorm.Open(sqlite.Open(cnf.DBPath), &gorm.Config{})
		if err != nil {
			logrus.Fatalf("error connecting to sqlite: %v", err)
		}
		return db
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
