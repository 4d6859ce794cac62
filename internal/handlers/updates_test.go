package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	updater "openhab_updater"
	"openhab_updater/internal/service"
)

func doRequest(r http.Handler, method, path string, body *bytes.Buffer, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestUpdatesHandlers_RequireAuth(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{},
		Dispatcher:    &mockDispatcher{},
		History:       &mockHistory{},
	}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/updates", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}
}

func TestUpdatesHandlers_EnqueueAccepted(t *testing.T) {
	disp := &mockDispatcher{enqueueID: "queued-1"}
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Dispatcher:    disp,
		History:       &mockHistory{},
	}
	r := newTestRouter(s)

	body := bytes.NewBufferString(`{"item":"LivingroomLight","value":"TOGGLE","label":"Living room light","show_toast":true}`)
	w := doRequest(r, http.MethodPost, "/api/v1/updates", body, authHeader("valid"))
	if w.Code != http.StatusAccepted {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if disp.enqueues != 1 {
		t.Fatalf("Enqueue calls = %d", disp.enqueues)
	}
	if disp.lastReq.ItemName != "LivingroomLight" || disp.lastReq.Value != "TOGGLE" || !disp.lastReq.ShowToast {
		t.Fatalf("wrong request: %+v", disp.lastReq)
	}

	var resp struct {
		Status string `json:"status"`
		ID     string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != statusQueued || resp.ID != "queued-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUpdatesHandlers_EnqueueRejectsMissingItem(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Dispatcher:    &mockDispatcher{},
		History:       &mockHistory{},
	}
	r := newTestRouter(s)

	body := bytes.NewBufferString(`{"value":"ON"}`)
	w := doRequest(r, http.MethodPost, "/api/v1/updates", body, authHeader("valid"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUpdatesHandlers_ListAppliesQueryFilters(t *testing.T) {
	hist := &mockHistory{listResp: []updater.UpdateOutcome{
		{ID: "a", HasConnection: true, HTTPStatus: 200, ItemName: "Light", Value: "ON"},
	}}
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Dispatcher:    &mockDispatcher{},
		History:       hist,
	}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/updates?from=2026-08-01&to=2026-08-27&item=Light&success=true", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if hist.lastFilter.Item != "Light" {
		t.Fatalf("item filter lost: %+v", hist.lastFilter)
	}
	if hist.lastFilter.Success == nil || !*hist.lastFilter.Success {
		t.Fatalf("success filter lost: %+v", hist.lastFilter)
	}
	if hist.lastFilter.From.IsZero() || hist.lastFilter.To.IsZero() {
		t.Fatalf("time filters lost: %+v", hist.lastFilter)
	}

	var resp struct {
		Count    int                     `json:"count"`
		Outcomes []updater.UpdateOutcome `json:"outcomes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Count != 1 || len(resp.Outcomes) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUpdatesHandlers_ListRejectsBadTime(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Dispatcher:    &mockDispatcher{},
		History:       &mockHistory{},
	}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/updates?from=yesterday", nil, authHeader("valid"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad time, got %d", w.Code)
	}
}

func TestUpdatesHandlers_GetOutcome(t *testing.T) {
	want := &updater.UpdateOutcome{ID: "abc", HasConnection: true, HTTPStatus: 200, ItemName: "Light", Value: "ON"}
	hist := &mockHistory{getResp: want}
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Dispatcher:    &mockDispatcher{},
		History:       hist,
	}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/updates/abc", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if hist.lastGetID != "abc" {
		t.Fatalf("id not passed: %q", hist.lastGetID)
	}

	var got updater.UpdateOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "abc" || got.HTTPStatus != 200 {
		t.Fatalf("unexpected outcome: %+v", got)
	}
}

func TestUpdatesHandlers_GetOutcomeNotFound(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Dispatcher:    &mockDispatcher{},
		History:       &mockHistory{},
	}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/updates/nope", nil, authHeader("valid"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
