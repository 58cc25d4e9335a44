package http

import (
	"net/http"
	"strconv"

	"golang-backtest/internal/dto"
	"golang-backtest/internal/model"
	"golang-backtest/pkg/common"
	"golang-backtest/pkg/utils"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupBacktest(base *echo.Group) {
	backtestGroup := base.Group("/v1/backtest")
	backtestGroup.POST("", h.runBacktest)
	backtestGroup.GET("/runs", h.listBacktestRuns)
}

func (h *HttpAPIHandler) runBacktest(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.BacktestRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if req.Exchange != "" && !utils.ContainsString(common.GetExchangeList(), req.Exchange) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown exchange: " + req.Exchange})
	}

	result, err := h.service.BacktestService.Run(ctx, *req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

func (h *HttpAPIHandler) listBacktestRuns(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	param := model.ListBacktestRunParam{
		Symbol:        c.QueryParam("symbol"),
		EngineStyle:   c.QueryParam("engine_style"),
		EngineVersion: c.QueryParam("engine_version"),
		Limit:         limit,
	}

	runs, err := h.service.BacktestService.History(ctx, param)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list backtest runs"})
	}

	return c.JSON(http.StatusOK, runs)
}
