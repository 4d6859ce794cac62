package openhab_updater

import "time"

// ToggleValue is the sentinel request value instructing the updater to compute
// the opposite of the item's current state instead of sending a literal value.
const ToggleValue = "TOGGLE"

// UpdateRequest is one requested item-state update. It is created by the
// enqueueing caller and consumed exactly once per execution attempt.
type UpdateRequest struct {
	ItemName    string `json:"item"`
	Label       string `json:"label,omitempty"`
	Value       string `json:"value"` // may be ToggleValue
	MappedValue string `json:"mapped_value,omitempty"`
	ShowToast   bool   `json:"show_toast"`
}

// DisplayLabel returns the label if set, otherwise the item name.
func (r UpdateRequest) DisplayLabel() string {
	if r.Label != "" {
		return r.Label
	}
	return r.ItemName
}

// PendingUpdate is a queued request awaiting dispatch.
type PendingUpdate struct {
	ID         string        `json:"id"`
	Request    UpdateRequest `json:"request"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
}

// UpdateOutcome is the result record of one update attempt.
// Invariant: HasConnection==false implies HTTPStatus==0; HasConnection==true
// always carries a real HTTP status (possibly an error code, possibly the
// synthetic 500 used for unparseable item payloads).
type UpdateOutcome struct {
	ID            string `json:"id"`
	HasConnection bool   `json:"has_connection"`
	HTTPStatus    int    `json:"http_status"`
	ItemName      string `json:"item"`
	Label         string `json:"label,omitempty"`
	Value         string `json:"value"`
	MappedValue   string `json:"mapped_value,omitempty"`
	ShowToast     bool   `json:"show_toast"`
	Timestamp     int64  `json:"timestamp"` // epoch millis, completion time
}

// Successful reports whether the attempt reached the server and got a 2xx.
func (o UpdateOutcome) Successful() bool {
	return o.HasConnection && o.HTTPStatus >= 200 && o.HTTPStatus < 300
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don't expose hash
}
