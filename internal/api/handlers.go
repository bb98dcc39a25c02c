package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"fedash/internal/dashboard"
	"fedash/internal/engine"
	"fedash/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"
)

type Handler struct {
	data     atomic.Pointer[engine.Dataset]
	defaults dashboard.Settings
}

// NewHandler returns a handler serving data. A nil dataset is allowed: the
// API answers 503 until SetData is called. A zero defaults.Metric means
// relative reduction.
func NewHandler(data *engine.Dataset, defaults dashboard.Settings) *Handler {
	if defaults.Metric == 0 {
		defaults.Metric = models.MetricRelativeReduction
	}
	h := &Handler{defaults: defaults}
	if data != nil {
		h.data.Store(data)
	}
	return h
}

// SetData publishes the loaded dataset. It is called once at startup.
func (h *Handler) SetData(d *engine.Dataset) { h.data.Store(d) }

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api", h.requireData)
	api.GET("/metrics", h.GetMetrics)
	api.GET("/filters", h.GetFilters)
	api.GET("/query", h.GetQuery)
	api.GET("/query.arrow", h.GetQueryArrow)
	api.GET("/panels/:panel", h.GetPanel)
}

type errorBody struct {
	Error string `json:"error"`
}

// requireData answers 503 while the dataset is loading.
func (h *Handler) requireData(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.data.Load() == nil {
			return c.JSON(http.StatusServiceUnavailable, errorBody{Error: "loading"})
		}
		return next(c)
	}
}

// notModified is called only on the success path, after the request has
// been validated. It sets ETag and reports whether If-None-Match already
// holds it, in which case the caller answers 304. The tag covers the source
// content and the full request URI.
func (h *Handler) notModified(c echo.Context) bool {
	tag := etag(h.data.Load().Fingerprint, c.Request().RequestURI)
	c.Response().Header().Set("ETag", tag)
	return c.Request().Header.Get("If-None-Match") == tag
}

func etag(fingerprint uint64, uri string) string {
	h := xxh3.New()
	var b [8]byte
	for i := range b {
		b[i] = byte(fingerprint >> (8 * i))
	}
	h.Write(b[:])
	h.WriteString(uri)
	return `"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}

// --- HANDLERS ---
// getPaginationParams reads limit and offset for a result of total rows.
// Both come back within [0, total] and offset+limit never exceeds total.
func getPaginationParams(c echo.Context, total int) (int, int) {
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > total-offset {
		limit = total - offset
	}
	return limit, offset
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
}

func (h *Handler) Health(c echo.Context) error {
	d := h.data.Load()
	if d == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "rows": d.Len()})
}

func (h *Handler) GetMetrics(c echo.Context) error {
	if h.notModified(c) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, engine.Metrics())
}

// GetFilters returns selector values. ?region= restricts countries to one region.
func (h *Handler) GetFilters(c echo.Context) error {
	d := h.data.Load()
	regions, _ := engine.DistinctValues(d, models.FieldRegion)
	scenarios, _ := engine.DistinctValues(d, models.FieldAssumptions)

	countrySource := d
	if r := c.QueryParam("region"); r != "" {
		countrySource = engine.FilterByRegions(d, []string{r})
	}
	countries, _ := engine.DistinctValues(countrySource, models.FieldCountry)

	if h.notModified(c) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, models.FilterOptions{
		Regions:   regions,
		Scenarios: scenarios,
		Countries: countries,
		Metrics:   engine.Metrics(),
	})
}

// GetQuery answers one filter selection, paginated.
func (h *Handler) GetQuery(c echo.Context) error {
	sel, err := parseSelection(c, h.defaults.Metric)
	if err != nil {
		return badRequest(c, err)
	}
	res, err := engine.ComposeFilters(h.data.Load(), sel)
	if err != nil {
		return badRequest(c, err)
	}
	if h.notModified(c) {
		return c.NoContent(http.StatusNotModified)
	}

	total := len(res.Records)
	limit, offset := getPaginationParams(c, total)
	res.Records = res.Records[offset : offset+limit]

	return c.JSON(http.StatusOK, models.Page{
		QueryResult: res,
		Total:       total,
		Limit:       limit,
		Offset:      offset,
	})
}

// GetQueryArrow answers the same selection as an Arrow IPC stream.
func (h *Handler) GetQueryArrow(c echo.Context) error {
	sel, err := parseSelection(c, h.defaults.Metric)
	if err != nil {
		return badRequest(c, err)
	}
	res, err := engine.ComposeFilters(h.data.Load(), sel)
	if err != nil {
		return badRequest(c, err)
	}
	if h.notModified(c) {
		return c.NoContent(http.StatusNotModified)
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.apache.arrow.stream")
	c.Response().WriteHeader(http.StatusOK)
	return engine.WriteIPC(c.Response(), res)
}

func (h *Handler) GetPanel(c echo.Context) error {
	d := h.data.Load()
	params, err := parsePanelParams(c)
	if err != nil {
		return badRequest(c, err)
	}
	params = dashboard.Defaults(d, params, h.defaults)

	panel, err := dashboard.Build(d, c.Param("panel"), params)
	if errors.Is(err, dashboard.ErrUnknownPanel) {
		return c.JSON(http.StatusNotFound, errorBody{Error: err.Error()})
	}
	if err != nil {
		return badRequest(c, err)
	}
	if h.notModified(c) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, panel)
}
