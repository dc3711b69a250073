package cms

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/pkg/errors"
)

// Client: CMS 콘텐츠 조작을 위한 타입 지정 클라이언트
type Client struct {
	api    Requester
	logger *slog.Logger
}

// NewClient: Requester 위에 타입 지정 CMS 클라이언트를 생성한다.
func NewClient(api Requester, logger *slog.Logger) *Client {
	return &Client{api: api, logger: logger}
}

type listResponse[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
}

// ListGamesPage: 게임 목록 한 페이지를 조회한다. (limit/offset 페이징)
func (c *Client) ListGamesPage(ctx context.Context, limit, offset int) ([]domain.Game, int, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	body, err := c.api.DoRequest(ctx, http.MethodGet, "/api/games", params, nil)
	if err != nil {
		return nil, 0, err
	}

	var resp listResponse[domain.Game]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, errors.NewAPIError("list_games", 0, err)
	}
	return resp.Data, resp.Meta.Total, nil
}

// ForEachGame: 전체 게임을 페이지 단위로 순회하며 fn을 호출한다.
// fn이 에러를 반환하면 순회를 중단한다. 페이지 수는 안전 상한으로 제한된다.
func (c *Client) ForEachGame(ctx context.Context, fn func(game domain.Game) error) error {
	limit := constants.CMSConfig.PageSize
	offset := 0

	for page := 0; page < constants.CMSConfig.MaxPages; page++ {
		games, total, err := c.ListGamesPage(ctx, limit, offset)
		if err != nil {
			return err
		}

		for _, game := range games {
			if err := fn(game); err != nil {
				return err
			}
		}

		offset += len(games)
		if len(games) == 0 || offset >= total {
			return nil
		}
	}

	c.logger.Warn("cms_paging_capped", slog.Int("max_pages", constants.CMSConfig.MaxPages))
	return nil
}

// GetGameBySlug: 슬러그로 게임 단건을 조회한다. 없으면 (nil, nil).
func (c *Client) GetGameBySlug(ctx context.Context, slug string) (*domain.Game, error) {
	body, err := c.api.DoRequest(ctx, http.MethodGet, "/api/games/"+url.PathEscape(slug), nil, nil)
	if err != nil {
		var apiErr *errors.APIError
		if stderrors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	var game domain.Game
	if err := json.Unmarshal(body, &game); err != nil {
		return nil, errors.NewAPIError("get_game", 0, err)
	}
	return &game, nil
}

// UpdatePerformance: 특정 게임/기기의 성능 레코드를 갱신한다.
func (c *Client) UpdatePerformance(ctx context.Context, gameID uint, record domain.DevicePerformanceRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return errors.NewAPIError("update_performance", 0, err)
	}

	path := fmt.Sprintf("/api/games/%d/performance/%s", gameID, url.PathEscape(record.DeviceID))
	if _, err := c.api.DoRequest(ctx, http.MethodPut, path, nil, payload); err != nil {
		return err
	}
	return nil
}

// UpdateReliability: 게임의 데이터 신뢰도 등급을 갱신한다. (스테일 강등용)
func (c *Client) UpdateReliability(ctx context.Context, gameID uint, reliability domain.DataReliability) error {
	payload, err := json.Marshal(map[string]string{"data_reliability": string(reliability)})
	if err != nil {
		return errors.NewAPIError("update_reliability", 0, err)
	}

	path := fmt.Sprintf("/api/games/%d", gameID)
	if _, err := c.api.DoRequest(ctx, http.MethodPatch, path, nil, payload); err != nil {
		return err
	}
	return nil
}

// UpdateGameMetadata: 장르 태그/출시 연도 등 메타데이터 필드를 갱신한다.
func (c *Client) UpdateGameMetadata(ctx context.Context, gameID uint, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return errors.NewAPIError("update_metadata", 0, err)
	}

	path := fmt.Sprintf("/api/games/%d", gameID)
	if _, err := c.api.DoRequest(ctx, http.MethodPatch, path, nil, payload); err != nil {
		return err
	}
	return nil
}

// ListReviewsPage: 리뷰 목록 한 페이지를 조회한다.
func (c *Client) ListReviewsPage(ctx context.Context, limit, offset int) ([]domain.Review, int, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("published", "true")

	body, err := c.api.DoRequest(ctx, http.MethodGet, "/api/reviews", params, nil)
	if err != nil {
		return nil, 0, err
	}

	var resp listResponse[domain.Review]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, errors.NewAPIError("list_reviews", 0, err)
	}
	return resp.Data, resp.Meta.Total, nil
}

// ForEachReview: 게시된 리뷰 전체를 페이지 단위로 순회한다.
func (c *Client) ForEachReview(ctx context.Context, fn func(review domain.Review) error) error {
	limit := constants.CMSConfig.PageSize
	offset := 0

	for page := 0; page < constants.CMSConfig.MaxPages; page++ {
		reviews, total, err := c.ListReviewsPage(ctx, limit, offset)
		if err != nil {
			return err
		}

		for _, review := range reviews {
			if err := fn(review); err != nil {
				return err
			}
		}

		offset += len(reviews)
		if len(reviews) == 0 || offset >= total {
			return nil
		}
	}

	c.logger.Warn("cms_paging_capped", slog.Int("max_pages", constants.CMSConfig.MaxPages))
	return nil
}

// UpdateReview: 리뷰의 신뢰도와 노트를 갱신한다. (재검증 플래그용)
func (c *Client) UpdateReview(ctx context.Context, reviewID uint, confidence domain.ReviewConfidence, note string) error {
	payload, err := json.Marshal(map[string]string{
		"confidence":   string(confidence),
		"curator_note": note,
	})
	if err != nil {
		return errors.NewAPIError("update_review", 0, err)
	}

	path := fmt.Sprintf("/api/reviews/%d", reviewID)
	if _, err := c.api.DoRequest(ctx, http.MethodPatch, path, nil, payload); err != nil {
		return err
	}
	return nil
}
