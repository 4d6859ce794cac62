package service

import (
	"context"
	"errors"
	"time"

	updater "openhab_updater"
	"openhab_updater/internal/logger"
	"openhab_updater/internal/notify"
	"openhab_updater/internal/openhab"
)

// MaxConnectionRetries bounds how many attempts may end in a retry signal
// before connection absence becomes a terminal failure.
const MaxConnectionRetries = 10

// ErrAwaitingConnection signals a retryable attempt: no usable connection yet
// and the attempt bound is not exhausted. The dispatcher owns backoff timing.
var ErrAwaitingConnection = errors.New("no usable connection, awaiting retry")

const (
	itemPathPrefix = "rest/items/"

	// syntheticLoadFailureStatus marks outcomes where the server answered but
	// its item payload could not be obtained or interpreted.
	syntheticLoadFailureStatus = 500
)

// UpdaterService pushes one item-state update to the server: fetch the item's
// current representation, resolve the toggle sentinel if present, submit the
// new value, and classify the result. Only connection absence is retryable;
// load failures and HTTP error statuses are terminal on first occurrence.
type UpdaterService struct {
	provider ConnectionProvider
	notifier notify.Notifier
	log      *logger.Logger
}

func NewUpdaterService(provider ConnectionProvider, notifier notify.Notifier, log *logger.Logger) *UpdaterService {
	return &UpdaterService{provider: provider, notifier: notifier, log: log}
}

// Execute runs one update attempt. attempt starts at 1 and counts every call
// for the same request, including ones that ended in ErrAwaitingConnection.
func (s *UpdaterService) Execute(ctx context.Context, req updater.UpdateRequest, attempt int) (updater.UpdateOutcome, error) {
	if err := s.provider.WaitForInitialization(ctx); err != nil {
		return updater.UpdateOutcome{}, err
	}

	conn := s.provider.UsableConnection()
	if conn == nil {
		if attempt <= MaxConnectionRetries {
			if req.ShowToast {
				s.notifier.Error(msgNoConnection)
			}
			return updater.UpdateOutcome{}, ErrAwaitingConnection
		}
		s.logResult(req, attempt, false, 0)
		return s.terminal(req, false, 0), nil
	}

	item, status, ok := s.loadItem(ctx, conn, req)
	if !ok {
		if req.ShowToast {
			s.notifier.Error(failureMessage(req.DisplayLabel(), status))
		}
		s.logResult(req, attempt, true, status)
		return s.terminal(req, true, status), nil
	}

	if req.Value == updater.ToggleValue {
		resolved := resolveToggle(item)
		req.Value = resolved
		req.MappedValue = resolved
	}

	resp, err := conn.Post(ctx, itemPathPrefix+req.ItemName, req.Value, openhab.ContentTypePlainUTF8)
	if err != nil {
		status := statusFromError(err)
		if req.ShowToast {
			s.notifier.Error(failureMessage(req.DisplayLabel(), status))
		}
		s.logResult(req, attempt, true, status)
		return s.terminal(req, true, status), nil
	}

	if req.ShowToast {
		s.notifier.Success(successMessage(req.Value, req.DisplayLabel(), req.MappedValue))
	}
	s.logResult(req, attempt, true, resp.StatusCode())
	return s.terminal(req, true, resp.StatusCode()), nil
}

// loadItem fetches and parses the item's current representation. The bool
// result distinguishes success from a terminal load failure carrying status.
func (s *UpdaterService) loadItem(ctx context.Context, conn *openhab.Connection, req updater.UpdateRequest) (openhab.Item, int, bool) {
	resp, err := conn.Get(ctx, itemPathPrefix+req.ItemName)
	if err != nil {
		return openhab.Item{}, statusFromError(err), false
	}
	item, err := openhab.ParseItem(resp.ContentType(), resp.Bytes())
	if err != nil {
		if s.log != nil {
			s.log.Warnw("item_parse_failed", "item", req.ItemName, "content_type", resp.ContentType(), "err", err)
		}
		return openhab.Item{}, syntheticLoadFailureStatus, false
	}
	return item, resp.StatusCode(), true
}

// resolveToggle computes the opposite of the item's current state.
// Shutters and dimmers (including groups of them) toggle between the numeric
// extremes; everything else toggles between ON and OFF.
func resolveToggle(item openhab.Item) string {
	if item.IsOfTypeOrGroupType(openhab.TypeRollershutter) || item.IsOfTypeOrGroupType(openhab.TypeDimmer) {
		if item.State.Kind == openhab.StateNumber && item.State.Number == 0 {
			return "100"
		}
		return "0"
	}
	if item.State.Kind == openhab.StateBool && item.State.Bool {
		return "OFF"
	}
	return "ON"
}

// statusFromError extracts the HTTP status from a transport error, or the
// synthetic load-failure status for errors without one (connection reset,
// timeout mid-request).
func statusFromError(err error) int {
	var httpErr *openhab.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return syntheticLoadFailureStatus
}

// terminal builds the outcome record echoing the (possibly toggle-resolved)
// request fields.
func (s *UpdaterService) terminal(req updater.UpdateRequest, hasConnection bool, status int) updater.UpdateOutcome {
	return updater.UpdateOutcome{
		HasConnection: hasConnection,
		HTTPStatus:    status,
		ItemName:      req.ItemName,
		Label:         req.Label,
		Value:         req.Value,
		MappedValue:   req.MappedValue,
		ShowToast:     req.ShowToast,
		Timestamp:     time.Now().UnixMilli(),
	}
}

func (s *UpdaterService) logResult(req updater.UpdateRequest, attempt int, hasConnection bool, status int) {
	if s.log == nil {
		return
	}
	s.log.Infow("update_finished",
		"item", req.ItemName,
		"value", req.Value,
		"attempt", attempt,
		"has_connection", hasConnection,
		"http_status", status,
	)
}
