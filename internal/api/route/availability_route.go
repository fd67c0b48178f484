package route

import (
	"time"

	"github.com/bassista/studio_calendar/internal/api/controller"
	"github.com/bassista/studio_calendar/internal/api/middleware"
	"github.com/bassista/studio_calendar/internal/auth"
	"github.com/gin-gonic/gin"
)

// NewAvailabilityRouter mounts the availability endpoints on group. Only the
// PUT routes go through the credential gate.
func NewAvailabilityRouter(timeout time.Duration, group *gin.RouterGroup, svc controller.AvailabilityService, authenticator auth.Authenticator) {
	group.Use(middleware.RequestTimeout(timeout))

	ac := controller.NewAvailabilityController(svc)
	gate := middleware.CredentialGate(authenticator)

	group.GET("availability", ac.ListAvailability)
	group.GET("availability/:date", ac.GetStatus)
	group.PUT("availability", gate, ac.SetStatus)
	group.PUT("availability/:date", gate, ac.SetStatusForDate)
}
