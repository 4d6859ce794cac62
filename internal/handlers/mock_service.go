package handlers

import (
	"context"
	"net/http"

	updater "openhab_updater"
	"openhab_updater/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockDispatcher struct {
	enqueueID  string
	enqueueErr error
	lastReq    updater.UpdateRequest
	enqueues   int
}

func (m *mockDispatcher) Run(ctx context.Context) {}
func (m *mockDispatcher) Enqueue(ctx context.Context, req updater.UpdateRequest) (string, error) {
	m.enqueues++
	m.lastReq = req
	return m.enqueueID, m.enqueueErr
}

type mockHistory struct {
	listResp   []updater.UpdateOutcome
	listErr    error
	getResp    *updater.UpdateOutcome
	getErr     error
	lastFilter service.HistoryFilter
	lastGetID  string
}

func (m *mockHistory) Get(ctx context.Context, id string) (*updater.UpdateOutcome, error) {
	m.lastGetID = id
	return m.getResp, m.getErr
}
func (m *mockHistory) List(ctx context.Context, f service.HistoryFilter) ([]updater.UpdateOutcome, error) {
	m.lastFilter = f
	return m.listResp, m.listErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
