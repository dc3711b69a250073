package server

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kapu/handheld-deals-go/internal/constants"
	"github.com/kapu/handheld-deals-go/internal/domain"
	"github.com/kapu/handheld-deals-go/internal/estimator"
	"github.com/kapu/handheld-deals-go/internal/service/game"
	"github.com/kapu/handheld-deals-go/internal/service/pricing"
	"github.com/kapu/handheld-deals-go/internal/service/search"
	"github.com/kapu/handheld-deals-go/internal/util"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PageHandler: 서버 렌더링 페이지를 처리하는 핸들러입니다.
type PageHandler struct {
	templates *template.Template
	games     *game.Repository
	deals     *pricing.Repository
	search    *search.Service
	logger    *slog.Logger
}

// NewPageHandler: 내장 템플릿을 파싱해 페이지 핸들러를 생성합니다.
func NewPageHandler(
	games *game.Repository,
	deals *pricing.Repository,
	searchSvc *search.Service,
	logger *slog.Logger,
) (*PageHandler, error) {
	funcs := template.FuncMap{
		"formatHours": util.FormatHours,
		"formatHoursPtr": func(v *float64) string {
			if v == nil {
				return "—"
			}
			return util.FormatHours(*v)
		},
		"formatPrice": func(v *float64) string {
			if v == nil {
				return ""
			}
			return fmt.Sprintf("$%.2f", *v)
		},
		"relative": func(t *time.Time, now time.Time) string {
			if t == nil {
				return ""
			}
			return util.FormatRelative(*t, now)
		},
	}
	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &PageHandler{
		templates: tmpl,
		games:     games,
		deals:     deals,
		search:    searchSvc,
		logger:    logger,
	}, nil
}

// homePage: 홈(딜 목록) 페이지 데이터
type homePage struct {
	Deals   []*domain.Deal
	Devices []domain.Device
}

// HomePage: 활성 딜 목록을 렌더링합니다.
func (h *PageHandler) HomePage(c *gin.Context) {
	deals, err := h.deals.ActiveDeals(c.Request.Context(), constants.PaginationConfig.ItemsPerPage, 0)
	if err != nil {
		h.logger.Error("home_page_failed", slog.Any("error", err))
		h.renderError(c, http.StatusInternalServerError, "딜 목록을 불러오지 못했습니다")
		return
	}

	h.render(c, "home.tmpl", homePage{
		Deals:   deals,
		Devices: domain.Devices(),
	})
}

// gamePage: 게임 상세 페이지 데이터
type gamePage struct {
	Game        *domain.Game
	Deals       []*domain.Deal
	LowestPrice *float64
	Estimates   []estimator.Estimate
	Devices     []domain.Device
	Now         time.Time
}

// GamePage: 게임 상세 페이지를 렌더링합니다.
func (h *PageHandler) GamePage(c *gin.Context) {
	slug := c.Param("slug")
	ctx := c.Request.Context()

	gameRecord, err := h.games.FindBySlug(ctx, slug)
	if err != nil {
		h.logger.Error("game_page_failed", slog.String("slug", slug), slog.Any("error", err))
		h.renderError(c, http.StatusInternalServerError, "게임 정보를 불러오지 못했습니다")
		return
	}
	if gameRecord == nil {
		h.renderError(c, http.StatusNotFound, "게임을 찾을 수 없습니다")
		return
	}

	page := gamePage{
		Game:    gameRecord,
		Devices: domain.Devices(),
		Now:     time.Now(),
	}

	if deals, err := h.deals.DealsForGame(ctx, gameRecord.ID); err == nil {
		page.Deals = deals
	}
	if lowest, ok, err := h.deals.LowestRecordedPrice(ctx, gameRecord.ID); err == nil && ok {
		page.LowestPrice = &lowest
	}

	tier := ""
	if gameRecord.CommunityTier != nil {
		tier = string(*gameRecord.CommunityTier)
	}
	input := estimator.Input{
		GenreTags:     gameRecord.Tags(),
		ReleaseYear:   gameRecord.ReleaseYear,
		DeckVerified:  gameRecord.IsDeckVerified(),
		CommunityTier: tier,
	}
	for _, est := range estimator.ForAllDevices(input) {
		if _, ok := gameRecord.PerformanceFor(est.DeviceID); !ok {
			page.Estimates = append(page.Estimates, est)
		}
	}

	h.render(c, "game.tmpl", page)
}

// searchPage: 검색 결과 페이지 데이터
type searchPage struct {
	Query   string
	Device  string
	Results []search.Result
	Devices []domain.Device
	Error   string
}

// SearchPage: 검색 결과 페이지를 렌더링합니다.
func (h *PageHandler) SearchPage(c *gin.Context) {
	query := c.Query("q")
	deviceID := c.Query("device")

	page := searchPage{
		Query:   query,
		Device:  deviceID,
		Devices: domain.Devices(),
	}

	if query != "" {
		results, err := h.search.Search(c.Request.Context(), query, deviceID)
		if err != nil {
			page.Error = "검색어를 확인해주세요 (2자 이상)"
		} else {
			page.Results = results
		}
	}

	h.render(c, "search.tmpl", page)
}

func (h *PageHandler) render(c *gin.Context, name string, data any) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		h.logger.Error("template_render_failed", slog.String("template", name), slog.Any("error", err))
	}
}

func (h *PageHandler) renderError(c *gin.Context, status int, message string) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(c.Writer, "error.tmpl", gin.H{"Message": message}); err != nil {
		h.logger.Error("template_render_failed", slog.String("template", "error.tmpl"), slog.Any("error", err))
	}
}
