package util

import "strings"

// TruncateString: 주어진 문자열을 최대 길이(Rune 기준)로 자르고, 초과 시 "..."을 붙여 반환합니다.
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// TrimSpace: 문자열 양쪽 끝의 공백을 제거한다. (strings.TrimSpace 래퍼)
func TrimSpace(s string) string {
	return strings.TrimSpace(s)
}

// Normalize: 문자열을 소문자로 변환하고 양쪽 공백을 제거합니다.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeTag: 장르 태그를 비교 가능한 형태로 정규화한다.
// 공백/언더스코어를 하이픈으로 통일한다. 예: "Visual Novel" -> "visual-novel"
func NormalizeTag(s string) string {
	tag := Normalize(s)
	tag = strings.ReplaceAll(tag, " ", "-")
	tag = strings.ReplaceAll(tag, "_", "-")
	return tag
}

// NormalizeKey: 검색 키 생성을 위해 특수문자, 공백 등을 제거하여 문자열을 정규화합니다.
func NormalizeKey(name string) string {
	name = Normalize(name)
	if name == "" {
		return ""
	}

	var builder strings.Builder
	for _, r := range name {
		switch r {
		case ' ', '-', '_', '.', '!', ':', '‘', '’', '\'', '—':
			continue
		default:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// Slugify: URL 등에 사용하기 적합하도록 문자열을 변환한다. (공백 -> "-", 특수문자 제거)
func Slugify(name string) string {
	name = Normalize(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "'", "")
	name = strings.ReplaceAll(name, ".", "")
	name = strings.ReplaceAll(name, "!", "")
	name = strings.ReplaceAll(name, ":", "")
	return name
}

// Contains: 문자열 슬라이스에 특정 문자열이 포함되어 있는지 확인합니다.
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
