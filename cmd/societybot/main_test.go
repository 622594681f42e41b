package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/go-society-bot/internal/config"
)

func TestClassifyCommand_PrintsJSON(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("LOG_LEVEL", "error")

	cmd := classifyCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"2BHK", "flat", "for", "rent", "in", "Tower", "A"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("classify: %v", err)
	}
	var v any
	if err := json.Unmarshal(out.Bytes(), &v); err != nil {
		t.Fatalf("output is not JSON: %q", out.String())
	}
}

func TestClassifyCommand_RequiresText(t *testing.T) {
	cmd := classifyCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatalf("expected an argument error")
	}
}

func TestNewServer_AppliesTimeouts(t *testing.T) {
	cfg := config.Config{
		Port:              "9090",
		ReadTimeout:       time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      3 * time.Second,
		IdleTimeout:       4 * time.Second,
		MaxHeaderBytes:    1024,
	}
	srv := newServer(cfg, http.NotFoundHandler())
	if srv.Addr != ":9090" || srv.ReadTimeout != time.Second || srv.ReadHeaderTimeout != 2*time.Second ||
		srv.WriteTimeout != 3*time.Second || srv.IdleTimeout != 4*time.Second || srv.MaxHeaderBytes != 1024 {
		t.Fatalf("server = %+v", srv)
	}
}
