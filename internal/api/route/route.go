package route

import (
	"os"

	"github.com/bassista/studio_calendar/internal/api/controller"
	"github.com/bassista/studio_calendar/internal/api/middleware"
	"github.com/bassista/studio_calendar/internal/app"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func SetupRoutes(appCtx *app.App, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.HoneybadgerMiddleware(os.Getenv("HONEYBADGER_API_KEY"), os.Getenv("GO_ENV"), logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(appCtx.Config.Server.CORSAllowedOrigins))

	r.GET("/health", controller.Health)

	api := r.Group("/api")
	NewAvailabilityRouter(appCtx.Config.Server.RequestTimeout, api, appCtx.Service, appCtx.Auth)

	return r
}
