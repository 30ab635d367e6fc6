// Package metrics 提供 Prometheus 指标注册与暴露
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/spotexchange/pkg/config"
	"github.com/wyfcoding/spotexchange/pkg/logger"
)

var (
	// HTTPRequestsTotal HTTP 请求总数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP 请求耗时分布
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// OrdersTotal 订单提交总数，按最终状态分类
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_orders_total",
			Help: "Total number of submitted orders by resulting status",
		},
		[]string{"side", "status"},
	)

	// TradesTotal 成交总数
	TradesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exchange_trades_total",
			Help: "Total number of executed trades",
		},
	)

	// MatchDuration 撮合耗时分布
	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "exchange_match_duration_seconds",
			Help:    "Matching episode latency in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// ActiveOrders 当前活跃订单数
	ActiveOrders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "exchange_active_orders",
			Help: "Current number of open and partially filled orders",
		},
	)
)

// ObserveHTTPRequest 记录一次 HTTP 请求
func ObserveHTTPRequest(method, path, status string, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// StartHTTPServer 启动独立的指标 HTTP 服务
func StartHTTPServer(cfg config.MetricsConfig) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "metrics server failed", "error", err)
		}
	}()
	return srv
}
