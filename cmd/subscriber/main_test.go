package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rickgao/comet-subscriber/internal/auth"
	"github.com/rickgao/comet-subscriber/internal/config"
	"github.com/rickgao/comet-subscriber/internal/connection"
	"github.com/rickgao/comet-subscriber/internal/supervisor"
)

// pendingTransport never completes a dial.
type pendingTransport struct{}

func (pendingTransport) Connect(ctx context.Context, address string, h connection.Handler) connection.Conn {
	return pendingConn{}
}

type pendingConn struct{}

func (pendingConn) Send([]byte) error { return connection.ErrNotConnected }
func (pendingConn) Close() error      { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSupervisorConfig(t *testing.T) {
	cfg := &config.SubscriberConfig{
		Server: config.ServerConfig{Address: "ws://localhost:8090/sub"},
		Reconnect: config.ReconnectConfig{
			MaxAttempts:       4,
			InitialDelay:      time.Second,
			BackoffMultiplier: 3,
			MaxDelay:          time.Minute,
		},
		Heartbeat: config.HeartbeatConfig{Interval: 30 * time.Second, Payload: "headerBuf"},
	}

	supCfg := supervisorConfig(cfg, auth.NewCredentials(1000, 16912), discardLogger())

	if supCfg.Address != cfg.Server.Address {
		t.Errorf("Address = %q, want %q", supCfg.Address, cfg.Server.Address)
	}
	if supCfg.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d, want 4", supCfg.MaxAttempts)
	}
	if supCfg.InitialDelay != time.Second {
		t.Errorf("InitialDelay = %v, want 1s", supCfg.InitialDelay)
	}
	if supCfg.BackoffMultiplier != 3 {
		t.Errorf("BackoffMultiplier = %v, want 3", supCfg.BackoffMultiplier)
	}
	if supCfg.MaxDelay != time.Minute {
		t.Errorf("MaxDelay = %v, want 1m", supCfg.MaxDelay)
	}
	if supCfg.HeartbeatInterval != 30*time.Second {
		t.Errorf("HeartbeatInterval = %v, want 30s", supCfg.HeartbeatInterval)
	}
	if string(supCfg.HeartbeatPayload) != "headerBuf" {
		t.Errorf("HeartbeatPayload = %q, want %q", supCfg.HeartbeatPayload, "headerBuf")
	}
	if supCfg.OnMessage == nil || supCfg.OnExhausted == nil {
		t.Error("expected OnMessage and OnExhausted to be wired")
	}

	payload, err := supCfg.AuthPayload()
	if err != nil {
		t.Fatalf("AuthPayload failed: %v", err)
	}
	if string(payload) != `{"userId":1000,"roomId":16912}` {
		t.Errorf("AuthPayload() = %s", payload)
	}
}

func TestHealthHandler(t *testing.T) {
	supCfg := supervisor.DefaultConfig()
	supCfg.Address = "ws://localhost:8090/sub"
	sup, err := supervisor.New(supCfg, pendingTransport{}, supervisor.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("supervisor.New failed: %v", err)
	}

	handler := createHealthHandler(sup)

	get := func() (*httptest.ResponseRecorder, map[string]interface{}) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("health body is not JSON: %v", err)
		}
		return rec, body
	}

	rec, body := get()
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200 while connecting", rec.Code)
	}
	if body["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", body["status"])
	}

	if err := sup.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	rec, body = get()
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code = %d, want 503 after termination", rec.Code)
	}
	if body["status"] != "unhealthy" {
		t.Errorf("status = %v, want unhealthy", body["status"])
	}
	sv, ok := body["supervisor"].(map[string]interface{})
	if !ok {
		t.Fatalf("supervisor section missing: %v", body)
	}
	if sv["state"] != "terminated" {
		t.Errorf("supervisor.state = %v, want terminated", sv["state"])
	}
}
