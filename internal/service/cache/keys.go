package cache

import "fmt"

// 캐시 키 네임스페이스. 전부 "deals:" 프리픽스 아래에 둔다.
const (
	keyPrefix = "deals"

	KeyActiveDeals = keyPrefix + ":active"
	KeyStaleReport = keyPrefix + ":report:stale"
)

// GameDetailKey: 게임 상세 캐시 키
func GameDetailKey(slug string) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, slug)
}

// SearchKey: 검색 결과 캐시 키 (쿼리+기기 필터 조합별)
func SearchKey(query, deviceID string) string {
	if deviceID == "" {
		deviceID = "all"
	}
	return fmt.Sprintf("%s:search:%s:%s", keyPrefix, deviceID, query)
}

// DeviceReportKey: 기기별 호환성 리포트 캐시 키
func DeviceReportKey(deviceID string) string {
	return fmt.Sprintf("%s:report:device:%s", keyPrefix, deviceID)
}

// AlertDispatchedKey: 알림 발송 중복 방지 키
func AlertDispatchedKey(alertID, dealID uint) string {
	return fmt.Sprintf("%s:alert:sent:%d:%d", keyPrefix, alertID, dealID)
}

// SearchPattern: 검색 캐시 전체 무효화 패턴
func SearchPattern() string {
	return keyPrefix + ":search:*"
}
