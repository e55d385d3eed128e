package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/common/expfmt"
	log "github.com/sirupsen/logrus"

	"github.com/itohio/boostgauge/pkg/cluster"
	"github.com/itohio/boostgauge/pkg/gauge"
	"github.com/itohio/boostgauge/pkg/metrics"
)

// Gauges is the part of the cluster exposed over HTTP
type Gauges interface {
	Latest() cluster.Frame
	Range() gauge.Range
	ResetRange() gauge.Range
	Stats() (ticks uint64, rollovers int)
	Config() gauge.Config
}

// API denotes a REST API for the gauge cluster
type API struct {
	gauges  Gauges
	metrics *metrics.Collector
	router  *fiber.App
}

// Stats is the body of GET /api/stats
type Stats struct {
	Ticks     uint64 `json:"ticks"`
	Rollovers int    `json:"rollovers"`
}

// New instantiates a new API. metrics may be nil, in which case /metrics is
// not served.
func New(g Gauges, m *metrics.Collector) *API {
	api := API{
		gauges:  g,
		metrics: m,
		router: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
	}

	// Setup routes
	api.router.Get("/api/gauges", api.handleGauges())
	api.router.Get("/api/range", api.handleRange())
	api.router.Post("/api/range/reset", api.handleResetRange())
	api.router.Get("/api/stats", api.handleStats())
	api.router.Get("/api/config", api.handleConfig())
	if m != nil {
		api.router.Get("/metrics", api.handleMetrics())
	}

	return &api
}

// Start listens on endpoint in a goroutine
func (api *API) Start(endpoint string) {
	go func() {
		log.WithField("endpoint", endpoint).Info("starting API")
		if err := api.router.Listen(endpoint); err != nil {
			log.WithError(err).Error("API stopped")
		}
	}()
}

// Shutdown stops the listener
func (api *API) Shutdown() error {
	return api.router.Shutdown()
}

func (api *API) handleGauges() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return c.JSON(api.gauges.Latest())
	}
}

func (api *API) handleRange() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return c.JSON(api.gauges.Range())
	}
}

func (api *API) handleResetRange() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return c.JSON(api.gauges.ResetRange())
	}
}

func (api *API) handleStats() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		ticks, rollovers := api.gauges.Stats()
		return c.JSON(Stats{Ticks: ticks, Rollovers: rollovers})
	}
}

func (api *API) handleConfig() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return c.JSON(api.gauges.Config())
	}
}

func (api *API) handleMetrics() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, string(expfmt.FmtText))
		if err := api.metrics.WriteText(c.Response().BodyWriter()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return nil
	}
}
