package cms

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenConfig: 클라이언트 자격증명 토큰 발급 설정
type TokenConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// NewRunTokenSource: 동기화 실행 한 번에 대응하는 토큰 소스를 생성한다.
// 실행마다 새로 만들어 전역 토큰 상태를 두지 않는다. 토큰 갱신은
// oauth2 패키지가 만료 시 자동으로 처리한다.
func NewRunTokenSource(ctx context.Context, cfg TokenConfig) oauth2.TokenSource {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	return cc.TokenSource(ctx)
}

// WriteScopes: 동기화 잡이 사용하는 쓰기 권한 범위
var WriteScopes = []string{"games:read", "games:write", "reviews:write"}

// ReadScopes: 조회 전용 범위
var ReadScopes = []string{"games:read", "reviews:read"}
