package http

import (
	"net/http"
	"strconv"

	"moviehub/internal/core/domain"
	"moviehub/internal/core/ports"
	apperrors "moviehub/pkg/errors"

	"github.com/gin-gonic/gin"
)

const msgFetchFailed = "Failed to fetch movies"

// CatalogMetrics is satisfied by the Prometheus collector.
type CatalogMetrics interface {
	RecordCatalogRequest(genre, outcome string)
}

type catalogErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type CatalogHandler struct {
	catalog ports.CatalogService
	metrics CatalogMetrics
}

var _ ports.CatalogHandler = (*CatalogHandler)(nil)

// NewCatalogHandler builds the catalog proxy endpoint. metrics may be nil.
func NewCatalogHandler(catalog ports.CatalogService, metrics CatalogMetrics) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		metrics: metrics,
	}
}

func (h *CatalogHandler) SetupRoutes(router gin.IRouter) {
	for _, path := range []string{"/api/movies", "/.netlify/functions/tmdb"} {
		router.GET(path, h.HandleMovies)
		router.OPTIONS(path, preflight)
	}
}

// HandleMovies proxies ?genre=<id> to the provider and relays its body.
func (h *CatalogHandler) HandleMovies(c *gin.Context) {
	genre := c.Query("genre")

	body, err := h.catalog.DiscoverByGenre(c.Request.Context(), genre)
	if err != nil {
		_ = c.Error(err)
		status, resp := catalogError(err)
		h.record(genre, outcomeFor(err))
		c.JSON(status, resp)
		return
	}

	h.record(genre, "success")
	c.Data(http.StatusOK, "application/json", body)
}

func catalogError(err error) (int, catalogErrorResponse) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		return http.StatusInternalServerError, catalogErrorResponse{Error: msgFetchFailed, Details: err.Error()}
	}

	resp := catalogErrorResponse{Error: appErr.Message}
	if appErr.Code == apperrors.ErrCodeUpstream && appErr.Cause != nil {
		resp.Details = appErr.Cause.Error()
	}
	return appErr.HTTPStatus, resp
}

func outcomeFor(err error) string {
	switch appErr := apperrors.GetAppError(err); {
	case appErr == nil:
		return "error"
	case appErr.Code == apperrors.ErrCodeConfiguration:
		return "not_configured"
	case appErr.Code == apperrors.ErrCodeValidation:
		return "invalid_request"
	case appErr.Code == apperrors.ErrCodeUpstream:
		return "upstream_error"
	default:
		return "error"
	}
}

// record keeps the genre label to the allow-list.
func (h *CatalogHandler) record(genre, outcome string) {
	if h.metrics == nil {
		return
	}
	label := "invalid"
	if id, err := strconv.Atoi(genre); err == nil && domain.IsAllowedGenre(id) {
		label = genre
	}
	h.metrics.RecordCatalogRequest(label, outcome)
}
