// Package assets: SSR 페이지가 사용하는 정적 파일을 바이너리에 내장한다.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFS embed.FS

// StaticFS: /static 경로로 서빙할 파일 시스템을 반환합니다.
func StaticFS() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
