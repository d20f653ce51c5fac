package httpapi

import (
	"bytes"
	"errors"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/greenhouse-dashboard/internal/greenhouse"
	"github.com/i474232898/greenhouse-dashboard/internal/greenhouse/gateway"
	"github.com/i474232898/greenhouse-dashboard/internal/render"
	"github.com/i474232898/greenhouse-dashboard/internal/views"
)

var validate = validator.New()

// Options carries the display settings shared by the handlers.
type Options struct {
	Title        string
	LabelDensity int
	DateLayout   string
}

// ErrorHandler is the centralized fiber error response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, ctrl *greenhouse.Controller, service *greenhouse.Service, opts Options) {
	h := &handlers{ctrl: ctrl, service: service, opts: opts}

	app.Get("/", h.dashboard)

	v1 := app.Group("/api/v1")
	v1.Get("/state", h.state)
	v1.Get("/files", h.files)
	v1.Put("/selection", h.selection)
	v1.Post("/refresh", h.refresh)
	v1.Get("/chart.svg", h.currentChartSVG)
	v1.Get("/files/:name/chart", h.fileChart)
	v1.Get("/files/:name/chart.svg", h.fileChartSVG)
	v1.Get("/files/:name/chart.png", h.fileChartPNG)
}

type handlers struct {
	ctrl    *greenhouse.Controller
	service *greenhouse.Service
	opts    Options
}

// selectionRequest is the body of PUT /api/v1/selection.
type selectionRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

// fileParam identifies a daily file in the path.
type fileParam struct {
	Name string `validate:"required,max=128,excludesall=/\\"`
}

// dashboard renders the page. ?index=N selects a file first; the selection
// belongs to the one shared controller, so it changes for every session,
// prefetched links included. Clients that must not affect others use the
// per-file chart endpoints.
func (h *handlers) dashboard(c *fiber.Ctx) error {
	if s := c.Query("index"); s != "" {
		index, err := strconv.Atoi(s)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
		}
		if err := validate.Var(index, "min=0"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := h.selectIndex(c, index); err != nil {
			return err
		}
	}

	data := views.NewDashboardData(h.opts.Title, h.ctrl.View())
	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, &data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render page")
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *handlers) state(c *fiber.Ctx) error {
	return c.JSON(h.ctrl.View())
}

func (h *handlers) files(c *fiber.Ctx) error {
	return c.JSON(h.ctrl.View().Files)
}

func (h *handlers) selection(c *fiber.Ctx) error {
	var req selectionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.selectIndex(c, *req.Index); err != nil {
		return err
	}
	return c.JSON(h.ctrl.View())
}

// selectIndex applies a selection. Gateway failures are not request errors:
// they leave the view empty and the caller still gets the view.
func (h *handlers) selectIndex(c *fiber.Ctx, index int) error {
	err := h.ctrl.Select(c.UserContext(), index)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, greenhouse.ErrIndexOutOfRange):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, greenhouse.ErrSuperseded):
		return fiber.NewError(fiber.StatusConflict, "selection changed while loading")
	default:
		slog.Warn("selection left the view empty", "index", index, "error", err)
		return nil
	}
}

func (h *handlers) refresh(c *fiber.Ctx) error {
	err := h.ctrl.Refresh(c.UserContext())
	switch {
	case errors.Is(err, greenhouse.ErrSuperseded):
		return fiber.NewError(fiber.StatusConflict, "refresh superseded by a newer request")
	case err != nil:
		slog.Warn("refresh failed", "error", err)
	}
	return c.JSON(h.ctrl.View())
}

func (h *handlers) fileName(c *fiber.Ctx) (string, error) {
	// Params point into a buffer fasthttp reuses; the name outlives the request
	// as a cache key.
	name, err := url.PathUnescape(utils.CopyString(c.Params("name")))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid file name")
	}
	if err := validate.Struct(fileParam{Name: name}); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return name, nil
}

func (h *handlers) loadChart(c *fiber.Ctx) (greenhouse.ChartSeries, greenhouse.PresentationState, error) {
	name, err := h.fileName(c)
	if err != nil {
		return greenhouse.ChartSeries{}, greenhouse.PresentationState{}, err
	}

	series, presentation, err := h.service.Chart(c.UserContext(), name, h.opts.LabelDensity, h.opts.DateLayout)
	if err != nil {
		var netErr *gateway.NetworkError
		if errors.As(err, &netErr) {
			return series, presentation, fiber.NewError(fiber.StatusBadGateway, "failed to fetch records from gateway")
		}
		return series, presentation, fiber.NewError(fiber.StatusInternalServerError, "failed to load records")
	}
	if series.Len() == 0 {
		return series, presentation, fiber.NewError(fiber.StatusNotFound, "no data for requested file")
	}
	return series, presentation, nil
}

func (h *handlers) fileChart(c *fiber.Ctx) error {
	series, presentation, err := h.loadChart(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"series":       series,
		"presentation": presentation,
	})
}

func (h *handlers) fileChartSVG(c *fiber.Ctx) error {
	series, presentation, err := h.loadChart(c)
	if err != nil {
		return err
	}
	return sendSVG(c, series, presentation)
}

func (h *handlers) fileChartPNG(c *fiber.Ctx) error {
	series, presentation, err := h.loadChart(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.PNG(&buf, series, presentation); err != nil {
		return renderError(err)
	}
	c.Type("png")
	return c.Send(buf.Bytes())
}

func (h *handlers) currentChartSVG(c *fiber.Ctx) error {
	v := h.ctrl.View()
	if v.State != greenhouse.StateReady || v.Series.Len() == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no chart for the current selection")
	}
	return sendSVG(c, v.Series, v.Presentation)
}

func sendSVG(c *fiber.Ctx, series greenhouse.ChartSeries, presentation greenhouse.PresentationState) error {
	var buf bytes.Buffer
	if err := render.SVG(&buf, series, presentation); err != nil {
		return renderError(err)
	}
	c.Type("svg")
	return c.Send(buf.Bytes())
}

func renderError(err error) error {
	if errors.Is(err, render.ErrNoData) {
		return fiber.NewError(fiber.StatusNotFound, "nothing to draw")
	}
	slog.Error("chart render failed", "error", err)
	return fiber.NewError(fiber.StatusInternalServerError, "failed to render chart")
}
