package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Métricas del ledger y del reporte de stock bajo.
var (
	movementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartstock_movements_total",
			Help: "Movimientos de stock procesados, por dirección y resultado.",
		},
		[]string{"direction", "outcome"},
	)
	applyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "smartstock_apply_duration_seconds",
			Help:    "Duración de la aplicación de un movimiento (incluye la transacción).",
			Buckets: prometheus.DefBuckets,
		},
	)
	lowStockProducts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smartstock_low_stock_products",
			Help: "Productos en o por debajo de su stock mínimo en el último reporte.",
		},
	)
)

// RegisterMetrics registra los collectors en el registry por defecto.
// Llamar una sola vez en el arranque.
func RegisterMetrics() {
	prometheus.MustRegister(movementsTotal, applyDuration, lowStockProducts)
}

// MetricsHandler expone /metrics en formato Prometheus.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
