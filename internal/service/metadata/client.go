// Package metadata: 게임 메타데이터 API 클라이언트.
// 장르 태그와 출시 연도 보강(enrichment)에 사용한다.
package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/util"
	"github.com/kapu/handheld-deals-go/pkg/errors"
)

// GameMetadata: 메타데이터 API가 반환하는 게임 정보
type GameMetadata struct {
	Slug        string
	Title       string
	ReleaseYear *int
	GenreTags   []string
}

// Client: 메타데이터 API 클라이언트
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	logger      *slog.Logger
	rateLimiter *rate.Limiter
}

// NewClient: 메타데이터 클라이언트를 생성한다.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: constants.APIConfig.MetadataTimeout},
		baseURL:     constants.APIConfig.MetadataBaseURL,
		apiKey:      apiKey,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Every(constants.APIConfig.MinCallInterval), 1),
	}
}

type searchResponse struct {
	Results []gameDTO `json:"results"`
}

type gameDTO struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Released string `json:"released"` // "2018-12-06"
	Genres   []struct {
		Slug string `json:"slug"`
	} `json:"genres"`
	Tags []struct {
		Slug string `json:"slug"`
	} `json:"tags"`
}

// SearchGame: 제목으로 게임을 검색하여 가장 정확히 일치하는 결과를 반환한다.
// 일치하는 결과가 없으면 (nil, nil).
func (c *Client) SearchGame(ctx context.Context, title string) (*GameMetadata, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("search", title)
	params.Set("page_size", "5")

	reqURL := c.baseURL + "/games?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAPIError("search_game", 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError("search_game", resp.StatusCode, nil)
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, errors.NewAPIError("search_game", 0, err)
	}

	best := pickBestMatch(title, search.Results)
	if best == nil {
		c.logger.Debug("metadata_no_match", slog.String("title", title))
		return nil, nil
	}
	return convert(*best), nil
}

// pickBestMatch: 정규화된 제목 완전 일치 > 첫 번째 결과 순으로 고른다.
func pickBestMatch(title string, results []gameDTO) *gameDTO {
	if len(results) == 0 {
		return nil
	}

	wanted := util.NormalizeKey(title)
	for i := range results {
		if util.NormalizeKey(results[i].Name) == wanted {
			return &results[i]
		}
	}
	return &results[0]
}

func convert(dto gameDTO) *GameMetadata {
	meta := &GameMetadata{
		Slug:  dto.Slug,
		Title: dto.Name,
	}

	if len(dto.Released) >= 4 {
		if year, err := strconv.Atoi(dto.Released[:4]); err == nil {
			meta.ReleaseYear = &year
		}
	}

	seen := make(map[string]struct{})
	for _, g := range dto.Genres {
		tag := util.NormalizeTag(g.Slug)
		if _, dup := seen[tag]; tag != "" && !dup {
			seen[tag] = struct{}{}
			meta.GenreTags = append(meta.GenreTags, tag)
		}
	}
	for _, t := range dto.Tags {
		tag := util.NormalizeTag(t.Slug)
		if _, dup := seen[tag]; tag != "" && !dup {
			seen[tag] = struct{}{}
			meta.GenreTags = append(meta.GenreTags, tag)
		}
	}

	return meta
}

// String: 로그 출력용 요약
func (m *GameMetadata) String() string {
	year := "?"
	if m.ReleaseYear != nil {
		year = strconv.Itoa(*m.ReleaseYear)
	}
	return fmt.Sprintf("%s (%s) [%s]", m.Title, year, strings.Join(m.GenreTags, ","))
}
