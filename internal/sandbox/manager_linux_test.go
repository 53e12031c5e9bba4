//go:build linux

package sandbox

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"openclaw/internal/config"
)

func TestManagerDisabledRefusesExec(t *testing.T) {
	mgr := NewManager(config.Sandbox{Enabled: false})
	if err := mgr.Start(); err != nil {
		t.Fatalf("Start on a disabled manager must be a no-op, got %v", err)
	}
	var out bytes.Buffer
	if _, err := mgr.ExecInSandbox(context.Background(), "sh", []string{"-c", "echo ok"}, nil, &out, nil); err == nil {
		t.Fatal("disabled sandbox must refuse to execute")
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestManagerExecIsolatesFilesystem(t *testing.T) {
	mgr := NewManager(config.Sandbox{Enabled: true})
	if err := mgr.Start(); err != nil {
		t.Skipf("sandbox start unavailable in test environment: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	var out, errBuf bytes.Buffer
	result, err := mgr.ExecInSandbox(context.Background(), "/bin/sh", []string{"-c", "echo ok && ls /"}, nil, &out, &errBuf)
	if err != nil {
		t.Fatalf("exec failed: %v (stderr=%s)", err, errBuf.String())
	}
	if result.ExitStatus != 0 {
		t.Fatalf("expected exit 0, got %d (stderr=%s)", result.ExitStatus, errBuf.String())
	}
	if !strings.Contains(out.String(), "ok") {
		t.Fatalf("expected echoed output, got: %s", out.String())
	}
	// The container root holds only the configured binds, never the host root.
	if strings.Contains(out.String(), "home") {
		t.Fatalf("host paths leaked into the container root: %s", out.String())
	}
}

func TestManagerStdinReachesWorker(t *testing.T) {
	mgr := NewManager(config.Sandbox{Enabled: true})
	if err := mgr.Start(); err != nil {
		t.Skipf("sandbox start unavailable in test environment: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	var out bytes.Buffer
	_, err := mgr.ExecInSandbox(context.Background(), "/bin/cat", nil, strings.NewReader("ping"), &out, nil)
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if out.String() != "ping" {
		t.Fatalf("stdin round-trip = %q, want ping", out.String())
	}
}
