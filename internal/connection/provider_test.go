package connection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"openhab_updater/internal/openhab"
)

func TestProvider_ReachableServerYieldsConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	conn := openhab.NewConnection(srv.URL, "", "", time.Second)
	p := NewProvider(conn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Start(ctx)

	if err := p.WaitForInitialization(ctx); err != nil {
		t.Fatalf("WaitForInitialization: %v", err)
	}
	if p.UsableConnection() == nil {
		t.Fatalf("expected usable connection")
	}
}

func TestProvider_NonOKProbeStillCountsAsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	conn := openhab.NewConnection(srv.URL, "", "", time.Second)
	p := NewProvider(conn, nil)
	if ok := p.Refresh(context.Background()); !ok {
		t.Fatalf("server answering 401 should still be reachable")
	}
	if p.UsableConnection() == nil {
		t.Fatalf("expected usable connection")
	}
}

func TestProvider_UnreachableServerYieldsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // no listener anymore

	conn := openhab.NewConnection(srv.URL, "", "", 200*time.Millisecond)
	p := NewProvider(conn, nil)
	if ok := p.Refresh(context.Background()); ok {
		t.Fatalf("expected unreachable")
	}
	if p.UsableConnection() != nil {
		t.Fatalf("expected nil connection")
	}
}

func TestProvider_WaitForInitializationHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	conn := openhab.NewConnection(srv.URL, "", "", time.Second)
	p := NewProvider(conn, nil)
	// Start never called: initialization never completes.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := p.WaitForInitialization(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestProvider_RefreshDetectsOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	conn := openhab.NewConnection(srv.URL, "", "", 200*time.Millisecond)
	p := NewProvider(conn, nil)

	if ok := p.Refresh(context.Background()); !ok {
		t.Fatalf("expected reachable")
	}
	if p.UsableConnection() == nil {
		t.Fatalf("expected usable connection before outage")
	}

	srv.Close()

	if ok := p.Refresh(context.Background()); ok {
		t.Fatalf("expected unreachable after server stopped")
	}
	if p.UsableConnection() != nil {
		t.Fatalf("expected nil connection during outage")
	}
}
