// Package routers assembles the gin engine: logging, tracing, metrics,
// the public catalog routes and the identity-gated API surface.
package routers

import (
	"context"
	"net/http"
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agrihub-io/agrihub/internal/auth"
	"github.com/agrihub-io/agrihub/internal/handlers"
)

const name = "github.com/agrihub-io/agrihub/internal/routers"

type APIRouterOptions struct {
	Logger   *zap.SugaredLogger
	Api      *handlers.API
	Resolver auth.Resolver
}

func NewAPIRouter(_ context.Context, o APIRouterOptions) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	loggerMiddleware := ginzap.GinzapWithConfig(o.Logger.Desugar(), &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{
				zap.String("traceID", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()),
			}
		},
	})

	r.Use(otelgin.Middleware(name, otelgin.WithPropagators(
		propagation.TraceContext{},
	)))
	r.Use(ginzap.RecoveryWithZap(o.Logger.Desugar(), true))

	newPrometheus().Use(r)

	api := o.Api

	// The catalog surface needs no identity.
	public := r.Group("/api", loggerMiddleware)
	{
		public.GET("/crops", api.ListCrops)
		public.GET("/crops/:id", api.GetCrop)
		public.GET("/market-prices", api.ListMarketPrices)
		public.GET("/market-prices/crop/:cropType", api.ListMarketPricesByCrop)
	}

	private := r.Group("/api", loggerMiddleware)
	{
		private.Use(auth.Middleware(o.Logger, o.Resolver))
		private.Use(api.CreateUserIfNotExists())

		// Feature Flags
		private.GET("/fflags", api.ListFeatureFlags)
		private.GET("/fflags/:name", api.GetFeatureFlag)

		// Users
		private.GET("/users/me", api.GetCurrentUser)
		private.GET("/users", api.ListUsers)
		private.GET("/users/:id", api.GetUser)
		private.PATCH("/users/:id/role", api.UpdateUserRole)

		// Farms
		private.GET("/farms", api.ListFarms)
		private.POST("/farms", api.CreateFarm)
		private.GET("/farms/:id", api.GetFarm)
		private.PATCH("/farms/:id", api.UpdateFarm)
		private.DELETE("/farms/:id", api.DeleteFarm)
		private.GET("/farms/:id/fields", api.ListFarmFields)
		private.GET("/farms/:id/devices", api.ListFarmDevices)
		private.GET("/farms/:id/weather", api.ListFarmWeather)
		private.GET("/farms/:id/weather/latest", api.GetFarmWeatherLatest)

		// Fields
		private.POST("/fields", api.CreateField)
		private.GET("/fields/:id", api.GetField)
		private.PATCH("/fields/:id", api.UpdateField)
		private.DELETE("/fields/:id", api.DeleteField)
		private.GET("/fields/:id/devices", api.ListFieldDevices)
		private.GET("/fields/:id/readings", api.ListFieldReadings)
		private.GET("/fields/:id/irrigation", api.ListFieldIrrigation)
		private.GET("/fields/:id/fertilization", api.ListFieldFertilization)
		private.GET("/fields/:id/harvests", api.ListFieldHarvests)

		// Devices
		private.GET("/devices", api.ListDevices)
		private.POST("/devices", api.CreateDevice)
		private.GET("/devices/:id", api.GetDevice)
		private.PATCH("/devices/:id/status", api.UpdateDeviceStatus)
		private.POST("/devices/:id/heartbeat", api.DeviceHeartbeat)
		private.DELETE("/devices/:id", api.DeleteDevice)
		private.GET("/devices/:id/readings", api.ListDeviceReadings)

		// Telemetry and activity logs
		private.POST("/readings", api.CreateSensorReading)
		private.POST("/irrigation", api.CreateIrrigationEvent)
		private.POST("/fertilization", api.CreateFertilizationEvent)
		private.POST("/weather", api.CreateWeatherSample)
		private.POST("/harvests", api.CreateHarvestRecord)

		// Alerts
		private.GET("/alerts", api.ListAlerts)
		private.POST("/alerts", api.CreateAlert)
		private.PATCH("/alerts/:id/read", api.MarkAlertRead)
		private.DELETE("/alerts/:id", api.DeleteAlert)

		// Recommendations
		private.GET("/recommendations", api.ListRecommendations)
		private.POST("/recommendations", api.CreateRecommendation)
		private.PATCH("/recommendations/:id/status", api.UpdateRecommendationStatus)

		// Reports
		private.GET("/reports", api.ListReports)
		private.POST("/reports", api.CreateReport)
		private.GET("/reports/:id", api.GetReport)
		private.DELETE("/reports/:id", api.DeleteReport)

		// Catalog management
		private.POST("/crops", api.CreateCrop)
		private.POST("/market-prices", api.CreateMarketPrice)

		// Dashboard
		private.GET("/dashboard", api.GetDashboard)
	}

	// Don't log the health/readiness checks.
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "UP",
		})
	})
	r.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "UP",
		})
	})

	return r, nil
}

func newPrometheus() *ginprometheus.Prometheus {
	p := ginprometheus.NewPrometheus("apiserver")
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		url := c.Request.URL.Path
		for _, p := range c.Params {
			if p.Key == "id" {
				url = strings.Replace(url, p.Value, ":id", 1)
				break
			}
		}
		return url
	}
	return p
}
