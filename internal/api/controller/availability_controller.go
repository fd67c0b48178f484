package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/bassista/studio_calendar/internal/api/middleware"
	"github.com/bassista/studio_calendar/internal/logger"
	"github.com/bassista/studio_calendar/internal/repository"
	"github.com/bassista/studio_calendar/internal/service"
	"github.com/gin-gonic/gin"
)

const authRealm = `Basic realm="studio-calendar"`

// AvailabilityService is the service API needed by the availability handlers.
type AvailabilityService interface {
	ListAvailability(ctx context.Context) ([]repository.Record, error)
	GetStatus(ctx context.Context, date string) (repository.Record, error)
	SetStatus(ctx context.Context, authorized bool, req service.SetStatusRequest) (repository.Record, error)
}

// AvailabilityController handles the /api/availability endpoints.
type AvailabilityController struct {
	svc AvailabilityService
}

func NewAvailabilityController(svc AvailabilityService) *AvailabilityController {
	return &AvailabilityController{svc: svc}
}

// statusBody is the body of PUT /api/availability/:date; date is optional
// and must match the path when present.
type statusBody struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// ListAvailability handles GET /api/availability - explicit records only.
func (ac *AvailabilityController) ListAvailability(c *gin.Context) {
	records, err := ac.svc.ListAvailability(c.Request.Context())
	if err != nil {
		ac.writeError(c, "list availability", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetStatus handles GET /api/availability/:date - default resolved.
func (ac *AvailabilityController) GetStatus(c *gin.Context) {
	rec, err := ac.svc.GetStatus(c.Request.Context(), c.Param("date"))
	if err != nil {
		ac.writeError(c, "get status", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// SetStatus handles PUT /api/availability with a {date, status} body.
func (ac *AvailabilityController) SetStatus(c *gin.Context) {
	authorized := middleware.IsAuthorized(c)

	var req service.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil && authorized {
		logger.WithComponent("availability-controller").Debugf("set status: invalid payload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ac.setStatus(c, authorized, req)
}

// SetStatusForDate handles PUT /api/availability/:date with a {status} body.
func (ac *AvailabilityController) SetStatusForDate(c *gin.Context) {
	authorized := middleware.IsAuthorized(c)
	date := c.Param("date")

	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil && authorized {
		logger.WithComponent("availability-controller").Debugf("set status %s: invalid payload: %v", date, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if authorized && body.Date != "" && body.Date != date {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date in body does not match path"})
		return
	}

	ac.setStatus(c, authorized, service.SetStatusRequest{Date: date, Status: body.Status})
}

func (ac *AvailabilityController) setStatus(c *gin.Context, authorized bool, req service.SetStatusRequest) {
	rec, err := ac.svc.SetStatus(c.Request.Context(), authorized, req)
	if err != nil {
		ac.writeError(c, "set status", err)
		return
	}
	logger.WithComponent("availability-controller").
		WithField("request_id", middleware.GetRequestID(c)).
		Infof("%s set to %s", rec.Date, rec.Status)
	c.JSON(http.StatusOK, rec)
}

func (ac *AvailabilityController) writeError(c *gin.Context, op string, err error) {
	log := logger.WithComponent("availability-controller").WithField("request_id", middleware.GetRequestID(c))

	var verr *service.ValidationError
	var aerr *service.AuthorizationError
	var serr *service.StoreUnavailableError
	switch {
	case errors.As(err, &verr):
		log.Debugf("%s: %v", op, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.As(err, &aerr):
		log.Warnf("%s: %v", op, err)
		c.Header("WWW-Authenticate", authRealm)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.As(err, &serr):
		log.Errorf("%s: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "availability store unavailable"})
	default:
		log.Errorf("%s: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
