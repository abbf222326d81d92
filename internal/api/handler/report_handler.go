package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pmtool/pmctl/internal/api/store"
)

type ReportHandler struct {
	store *store.Store
}

func NewReportHandler(st *store.Store) *ReportHandler {
	return &ReportHandler{store: st}
}

func (h *ReportHandler) Dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Dashboard())
}

func (h *ReportHandler) TasksByStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.TasksByStatus())
}

func (h *ReportHandler) OverdueTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.OverdueTasks())
}

func (h *ReportHandler) UserWorkload(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Workload())
}
