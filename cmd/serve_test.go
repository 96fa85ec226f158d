package cmd

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestNewServeCmd_Flags(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		name     string
		defValue string
	}{
		{name: "debug", defValue: "false"},
		{name: "transport", defValue: "stdio"},
		{name: "http-addr", defValue: ":8080"},
		{name: "metrics-enabled", defValue: "true"},
		{name: "metrics-addr", defValue: ":9090"},
	}

	for _, tt := range tests {
		flag := cmd.Flags().Lookup(tt.name)
		if flag == nil {
			t.Errorf("flag %q not registered", tt.name)
			continue
		}
		if flag.DefValue != tt.defValue {
			t.Errorf("flag %q default = %q, want %q", tt.name, flag.DefValue, tt.defValue)
		}
	}
}

func TestNewMCPHTTPServer_NoWriteDeadline(t *testing.T) {
	srv := newMCPHTTPServer(":8080", http.NewServeMux())

	// A tool call held back by the rate limiter can stall for up to a
	// minute; a write deadline would tear the connection down before the
	// response envelope is written.
	if srv.WriteTimeout != 0 {
		t.Errorf("WriteTimeout = %v, want 0 (no deadline)", srv.WriteTimeout)
	}
	if srv.ReadHeaderTimeout == 0 {
		t.Error("expected a read header timeout against slow-header clients")
	}
	if srv.IdleTimeout == 0 {
		t.Error("expected an idle timeout for keep-alive connections")
	}
}

func TestMCPHTTPServer_DeliversResponseAfterHandlerStall(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond) // stand-in for a rate-limiter stall
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": "done", "count": 0, "tasks": []}`))
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	srv := newMCPHTTPServer("", handler)
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body after stall: %v", err)
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("expected intact JSON envelope, got %q: %v", body, err)
	}
	if envelope["message"] != "done" {
		t.Errorf("unexpected envelope: %v", envelope)
	}
}

func TestResolveHTTPAddr(t *testing.T) {
	tests := []struct {
		name     string
		flagSet  bool
		flagAddr string
		envAddr  string
		expected string
	}{
		{
			name:     "flag default with no env",
			flagAddr: ":8080",
			expected: ":8080",
		},
		{
			name:     "env overrides flag default",
			flagAddr: ":8080",
			envAddr:  ":9999",
			expected: ":9999",
		},
		{
			name:     "explicit flag wins over env",
			flagSet:  true,
			flagAddr: ":7070",
			envAddr:  ":9999",
			expected: ":7070",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newServeCmd()
			if tt.flagSet {
				if err := cmd.Flags().Set("http-addr", tt.flagAddr); err != nil {
					t.Fatalf("setting flag: %v", err)
				}
			}

			got := resolveHTTPAddr(cmd, tt.flagAddr, tt.envAddr)
			if got != tt.expected {
				t.Errorf("resolveHTTPAddr(%q, %q) = %q, want %q",
					tt.flagAddr, tt.envAddr, got, tt.expected)
			}
		})
	}
}
