package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Config collects every environment-driven setting. It is built once in main
// and passed explicitly to the services that need it.
type Config struct {
	Port string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// bank scraper sidecar
	BankLookupURL       string
	BankAccountNo       string
	BankAccountBirthday string
	BankAccountPassword string
	BankSyncInterval    time.Duration

	// kakao alimtalk (NCP SENS)
	KakaoServiceID  string
	KakaoAccessKey  string
	KakaoSecretKey  string
	KakaoPlusFriend string
}

func Load() *Config {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		DBUser:              getEnv("DB_USER", "root"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBHost:              getEnv("DB_HOST", "127.0.0.1"),
		DBPort:              getEnv("DB_PORT", "3306"),
		DBName:              getEnv("DB_NAME", "pocha"),
		BankLookupURL:       getEnv("BANK_LOOKUP_URL", "http://127.0.0.1:9090"),
		BankAccountNo:       os.Getenv("BANK_ACCOUNT_NO"),
		BankAccountBirthday: os.Getenv("BANK_ACCOUNT_BIRTHDAY"),
		BankAccountPassword: os.Getenv("BANK_ACCOUNT_PASSWORD"),
		KakaoServiceID:      os.Getenv("KAKAO_SERVICE_ID"),
		KakaoAccessKey:      os.Getenv("KAKAO_ACCESS_KEY"),
		KakaoSecretKey:      os.Getenv("KAKAO_SECRET_KEY"),
		KakaoPlusFriend:     getEnv("KAKAO_PLUS_FRIEND_ID", "@acorn_soft"),
	}

	interval := 10
	if v := os.Getenv("BANK_SYNC_INTERVAL_SECOND"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			interval = n
		}
	}
	cfg.BankSyncInterval = time.Duration(interval) * time.Second

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the MySQL connection used in production. Tests open their own
// in-memory sqlite instead.
func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}
