package constants

import "time"

// CacheTTL 는 패키지 변수다.
var CacheTTL = struct {
	ActiveDeals     time.Duration
	GameDetail      time.Duration
	SearchResults   time.Duration
	AlertDispatched time.Duration
}{
	ActiveDeals:     5 * time.Minute,  // 5분 - 활성 딜 목록
	GameDetail:      20 * time.Minute, // 20분 - 게임 상세 (성능 레코드 포함)
	SearchResults:   10 * time.Minute, // 10분 - 검색 결과
	AlertDispatched: 24 * time.Hour,   // 24시간 - 가격 알림 발송 기록 (중복 방지)
}

// ValkeyConfig 는 패키지 변수다.
var ValkeyConfig = struct {
	ReadyTimeout      time.Duration
	ConnWriteTimeout  time.Duration
	DialTimeout       time.Duration
	BlockingPoolSize  int
	PipelineMultiplex int
}{
	ReadyTimeout:      5 * time.Second,
	ConnWriteTimeout:  3 * time.Second,
	DialTimeout:       5 * time.Second,
	BlockingPoolSize:  100,
	PipelineMultiplex: 4,
}

// RetryConfig 는 패키지 변수다.
var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

// CircuitBreakerConfig 는 패키지 변수다.
var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:     30 * time.Second, // 기본 재시도 대기 시간 (30초)
}

// APIConfig 는 외부 API 엔드포인트/타임아웃 설정이다.
var APIConfig = struct {
	CMSTimeout      time.Duration
	DealFeedBaseURL string
	DealFeedTimeout time.Duration
	MetadataBaseURL string
	MetadataTimeout time.Duration
	CompatBaseURL   string
	CompatTimeout   time.Duration
	MinCallInterval time.Duration
}{
	CMSTimeout:      15 * time.Second,
	DealFeedBaseURL: "https://api.cheapshark.com",
	DealFeedTimeout: 15 * time.Second,
	MetadataBaseURL: "https://api.rawg.io/api",
	MetadataTimeout: 15 * time.Second,
	CompatBaseURL:   "https://www.protondb.com/api/v1",
	CompatTimeout:   15 * time.Second,
	MinCallInterval: 350 * time.Millisecond, // 동일 API 연속 호출 간 최소 지연
}

// CMSConfig 는 헤드리스 CMS 페이징/쓰기 설정이다.
var CMSConfig = struct {
	PageSize       int
	MaxPages       int
	RequestTimeout time.Duration
}{
	PageSize:       100,
	MaxPages:       200, // 안전 상한 (무한 페이징 방지)
	RequestTimeout: 15 * time.Second,
}

// StorefrontScraperConfig 는 스토어 세일 페이지 스크래퍼 설정이다.
var StorefrontScraperConfig = struct {
	UserAgent      string
	RequestTimeout time.Duration
	DelayBetween   time.Duration
	CacheExpiry    time.Duration
}{
	UserAgent:      "Mozilla/5.0 (compatible; HandheldDealsBot/1.0; +https://handheld-deals.dev)",
	RequestTimeout: 15 * time.Second,
	DelayBetween:   350 * time.Millisecond,
	CacheExpiry:    30 * time.Minute,
}

// SyncConfig 는 동기화 잡 주기/배치 설정이다.
var SyncConfig = struct {
	DealRefreshInterval  time.Duration
	EstimatorInterval    time.Duration
	StalenessInterval    time.Duration
	MetadataInterval     time.Duration
	CompatInterval       time.Duration
	EstimatorConcurrency int
	HeartbeatTimeout     time.Duration
}{
	DealRefreshInterval:  30 * time.Minute,
	EstimatorInterval:    6 * time.Hour,
	StalenessInterval:    24 * time.Hour,
	MetadataInterval:     12 * time.Hour,
	CompatInterval:       12 * time.Hour,
	EstimatorConcurrency: 8, // 추정 패스 CMS 쓰기 동시성 상한
	HeartbeatTimeout:     10 * time.Second,
}

// StalenessConfig 는 재검증(스테일) 정책이다.
var StalenessConfig = struct {
	Threshold    time.Duration
	FlagSentinel string
}{
	Threshold:    180 * 24 * time.Hour, // 180일 경과 시 재검증 대상
	FlagSentinel: "[re-test flagged",   // 리뷰 노트 중복 플래그 방지용 문자열
}

// PaginationConfig 는 패키지 변수다.
var PaginationConfig = struct {
	ItemsPerPage int
	MaxPageSize  int
}{
	ItemsPerPage: 20,
	MaxPageSize:  100,
}

// AppTimeout 는 앱 빌드/종료 타임아웃 설정이다.
var AppTimeout = struct {
	Build    time.Duration
	Shutdown time.Duration
}{
	Build:    30 * time.Second,
	Shutdown: 10 * time.Second,
}

// ServerTimeout 는 HTTP 서버 타임아웃이다.
var ServerTimeout = struct {
	ReadHeader     time.Duration
	Read           time.Duration
	Write          time.Duration
	Idle           time.Duration
	MaxHeaderBytes int
}{
	ReadHeader:     5 * time.Second,
	Read:           15 * time.Second,
	Write:          30 * time.Second,
	Idle:           60 * time.Second,
	MaxHeaderBytes: 1 << 20,
}

// ServerConfig 는 서버 기본 설정이다.
var ServerConfig = struct {
	TrustedProxies []string
}{
	TrustedProxies: []string{"127.0.0.1", "::1"},
}

// CORSConfig 는 CORS 기본 설정이다.
var CORSConfig = struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
}{
	AllowOrigins: []string{"http://localhost:5173"},
	AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
}

// RequestTimeout 는 HTTP 요청 및 서비스 타임아웃 설정
var RequestTimeout = struct {
	APIRequest   time.Duration
	AdminRequest time.Duration
	SyncJob      time.Duration
	DatabasePing time.Duration
}{
	APIRequest:   10 * time.Second,
	AdminRequest: 10 * time.Second,
	SyncJob:      10 * time.Minute,
	DatabasePing: 5 * time.Second,
}

// DatabaseConfig 는 데이터베이스 연결 설정이다.
var DatabaseConfig = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}{
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
}

// DatabaseDefaults 는 PostgreSQL 기본값이다. (env 미설정 시)
var DatabaseDefaults = struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}{
	Host:     "localhost",
	Port:     5432,
	User:     "deals_user",
	Password: "deals_password",
	Database: "handheld_deals_db",
}

// SessionConfig 는 관리자 세션 설정이다.
var SessionConfig = struct {
	ExpiryDuration time.Duration
}{
	ExpiryDuration: 12 * time.Hour,
}

// LoginRateLimit 는 관리자 로그인 시도 제한 설정이다.
var LoginRateLimit = struct {
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}{
	MaxAttempts: 5,
	Window:      5 * time.Minute,
	Lockout:     15 * time.Minute,
}

// WebSocketConfig 는 라이브 딜 피드 설정이다.
var WebSocketConfig = struct {
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	SendBufferSize int
}{
	WriteTimeout:   10 * time.Second,
	PingInterval:   30 * time.Second,
	SendBufferSize: 16,
}
