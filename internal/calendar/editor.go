package calendar

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bassista/studio_calendar/internal/logger"
	"github.com/bassista/studio_calendar/internal/repository"
)

// Mode is the editing interaction mode.
type Mode string

const (
	ModeCycle            Mode = "cycle"
	ModeForceAvailable   Mode = "force-available"
	ModeForceUnavailable Mode = "force-unavailable"
	ModeForcePending     Mode = "force-pending"
)

// ParseMode accepts the mode names, and a bare status as shorthand for the
// matching force mode.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch Mode(s) {
	case ModeCycle, ModeForceAvailable, ModeForceUnavailable, ModeForcePending:
		return Mode(s), nil
	}
	if st, err := repository.ParseStatus(s); err == nil {
		return Mode("force-" + string(st)), nil
	}
	return "", fmt.Errorf("unknown mode: %q", s)
}

// NextStatus is the cycle order: available, unavailable, pending, available.
func NextStatus(current repository.Status) repository.Status {
	switch current {
	case repository.StatusAvailable:
		return repository.StatusUnavailable
	case repository.StatusUnavailable:
		return repository.StatusPending
	default:
		return repository.StatusAvailable
	}
}

// Apply returns the status a click produces in this mode.
func (m Mode) Apply(current repository.Status) repository.Status {
	switch m {
	case ModeForceAvailable:
		return repository.StatusAvailable
	case ModeForceUnavailable:
		return repository.StatusUnavailable
	case ModeForcePending:
		return repository.StatusPending
	default:
		return NextStatus(current)
	}
}

// API is the remote availability service seen by the editor.
type API interface {
	ListAvailability(ctx context.Context) ([]repository.Record, error)
	SetStatus(ctx context.Context, key repository.DateKey, status repository.Status) error
}

// Editor holds the local statusByDate cache of a view and applies user
// interactions to it. Local changes are optimistic: a failed write is logged
// and the local value stays until the next Load.
type Editor struct {
	mu           sync.Mutex
	view         *View
	api          API
	mode         Mode
	statusByDate map[repository.DateKey]repository.Status
}

func NewEditor(view *View, api API) *Editor {
	return &Editor{
		view:         view,
		api:          api,
		mode:         ModeCycle,
		statusByDate: map[repository.DateKey]repository.Status{},
	}
}

func (e *Editor) View() *View {
	return e.view
}

func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *Editor) SetMode(m Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = m
}

// Load replaces the local cache with the server records. On failure the
// cache is left empty, so every day shows as available.
func (e *Editor) Load(ctx context.Context) error {
	records, err := e.api.ListAvailability(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.statusByDate = make(map[repository.DateKey]repository.Status, len(records))
	if err != nil {
		logger.WithComponent("calendar").Errorf("cannot load availability: %v", err)
		return err
	}
	for _, r := range records {
		e.statusByDate[r.Date] = r.Status
	}
	logger.WithComponent("calendar").Debugf("loaded %d records", len(records))
	return nil
}

// StatusOf returns the local status of key.
func (e *Editor) StatusOf(key repository.DateKey) repository.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return statusOf(e.statusByDate, key)
}

// Click applies the current mode to key. It reports false when the view is
// read-only.
func (e *Editor) Click(ctx context.Context, key repository.DateKey) (repository.Status, bool) {
	return e.apply(ctx, key, false)
}

// Drag paints key while the pointer moves with the button held. Only force
// modes paint; in cycle mode and in read-only views it does nothing.
func (e *Editor) Drag(ctx context.Context, key repository.DateKey) (repository.Status, bool) {
	return e.apply(ctx, key, true)
}

func (e *Editor) apply(ctx context.Context, key repository.DateKey, drag bool) (repository.Status, bool) {
	e.mu.Lock()
	current := statusOf(e.statusByDate, key)
	if !e.view.Editable || (drag && e.mode == ModeCycle) {
		e.mu.Unlock()
		return current, false
	}
	next := e.mode.Apply(current)
	e.statusByDate[key] = next
	e.mu.Unlock()

	if err := e.api.SetStatus(ctx, key, next); err != nil {
		logger.WithComponent("calendar").Errorf("cannot save %s as %s: %v", key, next, err)
	}
	return next, true
}

// Render renders the current page of the view from the local cache.
func (e *Editor) Render() Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.Render(e.statusByDate)
}
