// Package http 提供交易所的 HTTP 接口层
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/spotexchange/internal/exchange/application"
	"github.com/wyfcoding/spotexchange/internal/exchange/domain"
	"github.com/wyfcoding/spotexchange/pkg/logger"
	"github.com/wyfcoding/spotexchange/pkg/response"
)

// Handler 交易所 HTTP 处理器
type Handler struct {
	command *application.ExchangeCommandService
	query   *application.ExchangeQueryService
	market  *application.MarketQueryService
}

// NewHandler 创建处理器
func NewHandler(
	command *application.ExchangeCommandService,
	query *application.ExchangeQueryService,
	market *application.MarketQueryService,
) *Handler {
	return &Handler{command: command, query: query, market: market}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/orders", h.SubmitOrder)
		v1.GET("/orders/:order_id", h.GetOrder)
		v1.GET("/orderbook", h.GetOrderbook)
		v1.GET("/trades/history", h.GetTradeHistory)
		v1.GET("/market/summary", h.GetMarketSummary)
	}
}

// SubmitOrder 提交新订单并立即撮合
func (h *Handler) SubmitOrder(c *gin.Context) {
	var cmd application.SubmitOrderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.command.SubmitOrder(c.Request.Context(), cmd)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Created(c, result)
}

// GetOrder 按订单 ID 查询订单
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.query.GetOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if order == nil {
		response.Error(c, http.StatusNotFound, "order not found")
		return
	}
	response.Success(c, order)
}

// GetOrderbook 获取订单簿快照
func (h *Handler) GetOrderbook(c *gin.Context) {
	book, err := h.query.GetOrderbook(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, book)
}

// GetTradeHistory 获取成交历史。不带 limit 参数时返回全部成交。
func (h *Handler) GetTradeHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	trades, err := h.query.GetTradeHistory(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, trades)
}

// GetMarketSummary 获取 24 小时市场摘要
func (h *Handler) GetMarketSummary(c *gin.Context) {
	summary, err := h.market.GetSummary(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, summary)
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError 将领域错误映射为 HTTP 状态码
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidOrder):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrStoreConflict):
		response.Error(c, http.StatusConflict, "order could not be settled, please retry")
	case errors.Is(err, domain.ErrPrecisionViolation):
		logger.Error(c.Request.Context(), "matching aborted on precision violation", "error", err)
		response.Error(c, http.StatusInternalServerError, "internal server error")
	default:
		logger.Error(c.Request.Context(), "unhandled request error", "error", err)
		response.Error(c, http.StatusInternalServerError, "internal server error")
	}
}
