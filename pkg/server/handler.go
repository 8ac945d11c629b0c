package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kerbaras/mangareader/pkg/catalog"
	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/services"
)

const maxLatestChapters = 10

type Handler struct {
	Store  *catalog.Store
	Reader *services.Reader
	log    *zap.Logger
}

func NewHandler(store *catalog.Store, reader *services.Reader, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Store: store, Reader: reader, log: log.Named("http")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)                         // GET /manga
	rg.GET("/genres", h.genres)                // GET /manga/genres
	rg.GET("/:id", h.getByID)                  // GET /manga/:id
	rg.GET("/:id/chapters/:number", h.chapter) // GET /manga/:id/chapters/:number
}

type listResponse struct {
	catalog.View
	Criteria catalog.Criteria          `json:"criteria"`
	Latest   map[string][]data.Chapter `json:"latest,omitempty"`
}

func (h *Handler) list(c *gin.Context) {
	// Each request derives its own view over the shared store.
	filters := catalog.NewFilters()
	filters.Set(catalog.Criteria{
		Query:  c.Query("q"),
		Genre:  c.Query("genre"),
		Status: c.Query("status"),
	})
	engine := catalog.NewEngine(h.Store, filters)
	engine.SetPage(parseInt(c.Query("page"), 1))

	resp := listResponse{View: engine.Derive(), Criteria: filters.Criteria()}

	if n := min(parseInt(c.Query("latest"), 0), maxLatestChapters); n > 0 && len(resp.Items) > 0 {
		ids := make([]string, len(resp.Items))
		for i, m := range resp.Items {
			ids[i] = m.ID
		}
		// A failure here only leaves the chapters out.
		latest, err := h.Reader.LatestChapters(c.Request.Context(), ids, n)
		if err == nil {
			resp.Latest = latest
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) genres(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"genres": catalog.Vocabulary(h.Store.Entries())})
}

func (h *Handler) getByID(c *gin.Context) {
	details, err := h.Reader.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) chapter(c *gin.Context) {
	number, err := data.ParseChapterNumber(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chapter number"})
		return
	}

	view, err := h.Reader.Chapter(c.Request.Context(), c.Param("id"), number)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) refresh(c *gin.Context) {
	if err := h.Store.Refresh(c.Request.Context()); err != nil {
		if errors.Is(err, catalog.ErrStaleRefresh) {
			c.JSON(http.StatusConflict, gin.H{"error": "superseded by a newer refresh"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "refresh failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":    h.Store.Len(),
		"generation": h.Store.Generation(),
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, data.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "upstream fetch failed"})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
