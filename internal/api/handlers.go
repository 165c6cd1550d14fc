package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"povdash/internal/dashboard"
	"povdash/internal/models"
	"povdash/internal/table"
)

type Handler struct {
	dash   atomic.Pointer[dashboard.Dashboard]
	logger *zerolog.Logger
}

// NewHandler returns a Handler. d may be nil while the datasets load; the
// data routes answer 503 until SetData is called.
func NewHandler(d *dashboard.Dashboard, logger *zerolog.Logger) *Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Handler{logger: logger}
	if d != nil {
		h.dash.Store(d)
	}
	return h
}

// SetData swaps in a loaded dashboard.
func (h *Handler) SetData(d *dashboard.Dashboard) {
	h.dash.Store(d)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.GetStatus)

	api := e.Group("/api", h.requireData)
	api.GET("/widgets", h.GetWidgets)
	api.POST("/widgets/:name", h.PostWidget)
	api.GET("/options/countries", h.GetCountries)
	api.GET("/options/years", h.GetYears)
	api.GET("/options/indicators", h.GetIndicators)
	api.GET("/datasets", h.GetDatasets)
}

// requireData answers 503 while the datasets are still loading.
func (h *Handler) requireData(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.dash.Load() == nil {
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "datasets are loading"})
		}
		return next(c)
	}
}

// --- HANDLERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Status{Ready: h.dash.Load() != nil})
}

func (h *Handler) GetWidgets(c echo.Context) error {
	return c.JSON(http.StatusOK, models.WidgetList{Widgets: h.dash.Load().Widgets()})
}

// PostWidget runs one widget against the posted selection.
// Skip is 204 so the client keeps what it shows.
func (h *Handler) PostWidget(c echo.Context) error {
	name := c.Param("name")
	var sel dashboard.Selection
	if err := c.Bind(&sel); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid selection: " + err.Error()})
	}

	out := h.dash.Load().Dispatch(name, sel)
	switch out.Tag {
	case dashboard.TagSkip:
		return c.NoContent(http.StatusNoContent)
	case dashboard.TagFailure:
		status := http.StatusInternalServerError
		if errors.Is(out.Err, dashboard.ErrUnknownWidget) {
			status = http.StatusNotFound
		} else {
			h.logger.Error().Err(out.Err).Str("widget", name).Msg("widget failed")
		}
		return c.JSON(status, models.ErrorResponse{Error: out.Err.Error()})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetCountries(c echo.Context) error {
	countries := h.dash.Load().CountryOptions()
	total := len(countries)
	limit, offset := getPaginationParams(c, total)

	if offset >= total {
		return c.JSON(http.StatusOK, models.Page[string]{Data: []string{}, Total: total, Limit: limit, Offset: offset})
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, models.Page[string]{
		Data:   countries[offset:end],
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *Handler) GetYears(c echo.Context) error {
	set := c.QueryParam("dataset")
	years, err := h.dash.Load().YearOptions(set)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	}
	if years == nil {
		years = []int{}
	}
	return c.JSON(http.StatusOK, models.YearOptions{Dataset: set, Years: years})
}

func (h *Handler) GetIndicators(c echo.Context) error {
	indicators := h.dash.Load().IndicatorOptions()
	limit, _ := getPaginationParams(c, len(indicators))

	if limit < len(indicators) {
		return c.JSON(http.StatusOK, indicators[:limit])
	}
	return c.JSON(http.StatusOK, indicators)
}

// GetDatasets describes the loaded tables.
func (h *Handler) GetDatasets(c echo.Context) error {
	data := h.dash.Load().Data()
	named := []struct {
		name string
		t    *table.Table
	}{
		{"wide", data.Wide},
		{"long", data.Long},
		{"series", data.Series},
		{"population", data.Population},
	}

	out := make([]models.DatasetInfo, 0, len(named))
	for _, n := range named {
		if n.t == nil {
			continue
		}
		out = append(out, describe(n.name, n.t))
	}
	return c.JSON(http.StatusOK, out)
}

func describe(name string, t *table.Table) models.DatasetInfo {
	schema := t.Schema()
	info := models.DatasetInfo{Name: name, Rows: t.Len(), Columns: make([]models.ColumnInfo, 0, schema.NumFields())}
	for _, f := range schema.Fields() {
		info.Columns = append(info.Columns, models.ColumnInfo{Name: f.Name, Type: f.Type.Name(), Nullable: f.Nullable})
	}
	return info
}
