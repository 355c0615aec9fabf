package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pkt.systems/wapploxx/internal/ipblock"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := newRootCommand()
	want := []string{"status", "arm", "disarm", "locks", "events", "system", "login"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing subcommand %q", name)
		}
	}
}

func TestStatusRequiresServer(t *testing.T) {
	t.Setenv("WAPPLOXX_CONFIG_DIR", t.TempDir())
	t.Setenv("WAPPLOXX_SERVER", "")
	t.Setenv("WAPPLOXX_USERNAME", "")
	t.Setenv("WAPPLOXX_PASSWORD", "")

	_, err := execute(t, "status")
	if err == nil || !strings.Contains(err.Error(), "server URL required") {
		t.Fatalf("err = %v, want missing-server error", err)
	}
}

func TestLoginFailsFastOnActiveBlock(t *testing.T) {
	dir := t.TempDir()
	blockPath := filepath.Join(dir, ipblock.DefaultFileName)
	if err := ipblock.New(blockPath).Save(time.Minute); err != nil {
		t.Fatalf("seed block record: %v", err)
	}
	t.Setenv("WAPPLOXX_CONFIG_DIR", dir)
	t.Setenv("WAPPLOXX_SERVER", "https://127.0.0.1:1")
	t.Setenv("WAPPLOXX_USERNAME", "admin")
	t.Setenv("WAPPLOXX_PASSWORD", "secret")
	t.Setenv("WAPPLOXX_IP_BLOCK_PATH", blockPath)

	_, err := execute(t, "login")
	if err == nil || !strings.Contains(err.Error(), "login blocked") {
		t.Fatalf("err = %v, want blocked-login error", err)
	}
}

func TestEventsRejectsUnknownType(t *testing.T) {
	t.Setenv("WAPPLOXX_CONFIG_DIR", t.TempDir())
	t.Setenv("WAPPLOXX_SERVER", "https://127.0.0.1:1")
	t.Setenv("WAPPLOXX_USERNAME", "admin")
	t.Setenv("WAPPLOXX_PASSWORD", "secret")

	_, err := execute(t, "events", "--type", "bogus")
	if err == nil || !strings.Contains(err.Error(), "invalid event type") {
		t.Fatalf("err = %v, want invalid-type error", err)
	}
}
