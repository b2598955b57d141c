package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/nextops/aws-services/internal/api/http"
	"github.com/nextops/aws-services/internal/api/http/middleware"
	"github.com/nextops/aws-services/internal/graph"
	"github.com/nextops/aws-services/internal/logging"
	"github.com/nextops/aws-services/internal/metrics"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Store       graph.Store
	Workflow    httpapi.SyncRunner
	Refresher   httpapi.CatalogRefresher
	Metrics     *metrics.Registry
	Logger      *logging.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.RequestID(dep.Logger))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store)
	healthHandler.RegisterRoutes(r)

	r.GET("/metrics", gin.WrapH(dep.Metrics.Handler()))

	api := r.Group("/api/v1")
	syncHandler := httpapi.NewSyncHandler(dep.Workflow, dep.Refresher, dep.Logger)
	syncHandler.RegisterRoutes(api)

	return r
}
