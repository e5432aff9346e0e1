package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// 退避運転かどうかを報告できるもの（FailoverTxManagerが満たす）
type DegradedReporter interface {
	Degraded() bool
}

// /health。フロントはここでポーリング間隔と退避状態を知る。
type HealthHandler struct {
	reporter            DegradedReporter
	pollIntervalSeconds int
}

func NewHealthHandler(reporter DegradedReporter, pollIntervalSeconds int) *HealthHandler {
	return &HealthHandler{reporter: reporter, pollIntervalSeconds: pollIntervalSeconds}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.health)
}

type HealthResponse struct {
	Status              string `json:"status"`
	Degraded            bool   `json:"degraded"`
	PollIntervalSeconds int    `json:"poll_interval_seconds"`
}

func (h *HealthHandler) health(c echo.Context) error {
	degraded := false
	if h.reporter != nil {
		degraded = h.reporter.Degraded()
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:              "ok",
		Degraded:            degraded,
		PollIntervalSeconds: h.pollIntervalSeconds,
	})
}
