package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/bassista/studio_calendar/internal/cache"
	"github.com/bassista/studio_calendar/internal/logger"
	"github.com/bassista/studio_calendar/internal/repository"
	"github.com/go-playground/validator/v10"
)

// SetStatusRequest is the body of a status mutation.
type SetStatusRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Status string `json:"status" validate:"required,oneof=available unavailable pending"`
}

// AvailabilityService validates requests and answers them from the store.
// It keeps no state of its own.
type AvailabilityService struct {
	store    cache.AvailabilityStore
	validate *validator.Validate
}

func NewAvailabilityService(store cache.AvailabilityStore) (*AvailabilityService, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &AvailabilityService{store: store, validate: v}, nil
}

// ListAvailability returns only explicitly stored records. Days missing from
// the result are available; callers fill the default themselves.
func (s *AvailabilityService) ListAvailability(ctx context.Context) ([]repository.Record, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "list", Err: err}
	}
	if records == nil {
		records = []repository.Record{}
	}
	return records, nil
}

// GetStatus resolves the effective status of a day, defaulting to available.
func (s *AvailabilityService) GetStatus(ctx context.Context, date string) (repository.Record, error) {
	key, err := repository.ParseDateKey(date)
	if err != nil {
		return repository.Record{}, &ValidationError{Field: "date", Reason: dateReason}
	}

	status, err := s.store.Get(ctx, key)
	if err != nil {
		return repository.Record{}, &StoreUnavailableError{Op: "get", Err: err}
	}
	if !status.Valid() {
		status = repository.DefaultStatus
	}
	return repository.Record{Date: key, Status: status}, nil
}

// SetStatus upserts the status of a day. Authorization is checked first and
// validation second; the store is only touched when both pass.
func (s *AvailabilityService) SetStatus(ctx context.Context, authorized bool, req SetStatusRequest) (repository.Record, error) {
	if !authorized {
		return repository.Record{}, &AuthorizationError{Reason: "missing or incorrect credentials"}
	}
	if err := s.validateRequest(req); err != nil {
		return repository.Record{}, err
	}

	rec, err := s.store.Upsert(ctx, repository.DateKey(req.Date), repository.Status(req.Status))
	if err != nil {
		return repository.Record{}, &StoreUnavailableError{Op: "upsert", Err: err}
	}
	logger.WithComponent("availability-service").Debugf("status of %s set to %s", rec.Date, rec.Status)
	return rec, nil
}

const (
	dateReason   = "must be a calendar date formatted YYYY-MM-DD"
	statusReason = "must be one of available, unavailable, pending"
)

func (s *AvailabilityService) validateRequest(req SetStatusRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "body", Reason: err.Error()}
	}

	fe := verrs[0]
	reason := "is invalid"
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "datetime":
		reason = dateReason
	case "oneof":
		reason = statusReason
	}
	return &ValidationError{Field: fe.Field(), Reason: reason}
}
