// Package config: 환경 변수 기반 서비스 설정을 로드하고 검증한다.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kapu/handheld-deals-go/internal/constants"
)

// Config: 애플리케이션 전역 설정
type Config struct {
	// 서버
	Port     int
	GinMode  string
	BaseURL  string // 공개 사이트 기준 URL (알림 링크 생성용)
	LogLevel string

	// 파일 로깅 (LogDir이 비어있으면 콘솔만)
	LogDir        string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// PostgreSQL
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Valkey 캐시
	ValkeyAddress  string
	ValkeyPassword string
	ValkeyDB       int

	// 헤드리스 CMS (콘텐츠 저장소)
	CMSBaseURL      string
	CMSTokenURL     string
	CMSClientID     string
	CMSClientSecret string

	// 외부 데이터 소스
	DealFeedAPIKey string // 딜 애그리게이터 (선택)
	MetadataAPIKey string // 게임 메타데이터 API
	CompatAPIKey   string // 호환성 리포트 API (선택)

	// 관리자 대시보드
	AdminUsername     string
	AdminPasswordHash string // bcrypt 해시
	SessionSecret     string // 세션 쿠키 HMAC 서명 키 (비어있으면 서명 생략)
	ForceHTTPS        bool

	// 동기화 드라이버
	SyncEnabled      bool
	AlertWebhookURL  string   // 가격 알림 발송 웹훅 (선택)
	SyncHeartbeatURL string   // 잡 완료 모니터링 핑 URL (선택)
	SalePages        []string // 보조 수집 세일 페이지 "store|url" 목록 (선택)

	// CORS 허용 오리진 (쉼표 구분, 미설정 시 기본값)
	AllowedOrigins []string
}

// LoadConfig: .env 파일과 환경 변수에서 설정을 읽어 Config를 구성합니다.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no_env_file", "error", err)
	}

	cfg := &Config{
		Port:     getEnvInt("PORT", 8080),
		GinMode:  getEnv("GIN_MODE", "release"),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LogDir:        getEnv("LOG_DIR", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 7),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),

		DBHost:     getEnv("DB_HOST", constants.DatabaseDefaults.Host),
		DBPort:     getEnvInt("DB_PORT", constants.DatabaseDefaults.Port),
		DBUser:     getEnv("DB_USER", constants.DatabaseDefaults.User),
		DBPassword: getEnv("DB_PASSWORD", constants.DatabaseDefaults.Password),
		DBName:     getEnv("DB_NAME", constants.DatabaseDefaults.Database),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		ValkeyAddress:  getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword: getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:       getEnvInt("VALKEY_DB", 0),

		CMSBaseURL:      getEnv("CMS_BASE_URL", ""),
		CMSTokenURL:     getEnv("CMS_TOKEN_URL", ""),
		CMSClientID:     getEnv("CMS_CLIENT_ID", ""),
		CMSClientSecret: getEnv("CMS_CLIENT_SECRET", ""),

		DealFeedAPIKey: getEnv("DEALFEED_API_KEY", ""),
		MetadataAPIKey: getEnv("METADATA_API_KEY", ""),
		CompatAPIKey:   getEnv("COMPAT_API_KEY", ""),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		ForceHTTPS:        getEnvBool("FORCE_HTTPS", false),

		SyncEnabled:      getEnvBool("SYNC_ENABLED", true),
		AlertWebhookURL:  getEnv("ALERT_WEBHOOK_URL", ""),
		SyncHeartbeatURL: getEnv("SYNC_HEARTBEAT_URL", ""),
		SalePages:        parseCommaSeparated(getEnv("STOREFRONT_SALE_PAGES", "")),

		AllowedOrigins: parseCommaSeparated(getEnv("ALLOWED_ORIGINS", "")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate: 필수 설정 누락 여부를 검증한다.
func (c *Config) Validate() error {
	var missing []string

	if c.CMSBaseURL == "" {
		missing = append(missing, "CMS_BASE_URL")
	}
	if c.CMSTokenURL == "" {
		missing = append(missing, "CMS_TOKEN_URL")
	}
	if c.CMSClientID == "" {
		missing = append(missing, "CMS_CLIENT_ID")
	}
	if c.CMSClientSecret == "" {
		missing = append(missing, "CMS_CLIENT_SECRET")
	}
	if c.MetadataAPIKey == "" {
		missing = append(missing, "METADATA_API_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	return nil
}

// DSN: lib/pq 연결 문자열을 구성한다.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid_env_int", "key", key, "value", value)
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("invalid_env_bool", "key", key, "value", value)
		return defaultValue
	}
	return parsed
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
