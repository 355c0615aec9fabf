package wapploxx_test

import (
	"path/filepath"
	"testing"
	"time"

	"pkt.systems/wapploxx"
)

func TestConfigNormalizeDefaults(t *testing.T) {
	t.Setenv("WAPPLOXX_CONFIG_DIR", t.TempDir())

	cfg := wapploxx.Config{
		Server:   " https://192.168.1.50/ ",
		Username: "admin",
		Password: "secret",
	}
	// TrimSpace only; trailing slash handling belongs to the client.
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Server != "https://192.168.1.50/" {
		t.Fatalf("server = %q", cfg.Server)
	}
	if cfg.Timeout != wapploxx.DefaultTimeout {
		t.Fatalf("timeout = %v, want default", cfg.Timeout)
	}
	if filepath.Base(cfg.IPBlockPath) != wapploxx.DefaultIPBlockFileName {
		t.Fatalf("ip block path = %q", cfg.IPBlockPath)
	}
}

func TestConfigNormalizeRejectsMissingFields(t *testing.T) {
	t.Parallel()

	if err := (&wapploxx.Config{Username: "a", Password: "b"}).Normalize(); err == nil {
		t.Fatal("expected error for missing server")
	}
	if err := (&wapploxx.Config{Server: "https://c"}).Normalize(); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestConfigNormalizeKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := wapploxx.Config{
		Server:      "https://c",
		Username:    "a",
		Password:    "b",
		Timeout:     9 * time.Second,
		IPBlockPath: "/tmp/custom-block",
	}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Timeout != 9*time.Second || cfg.IPBlockPath != "/tmp/custom-block" {
		t.Fatalf("explicit values overridden: %+v", cfg)
	}
}

func TestDefaultConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WAPPLOXX_CONFIG_DIR", dir)

	got, err := wapploxx.DefaultConfigDir()
	if err != nil {
		t.Fatalf("config dir: %v", err)
	}
	if got != dir {
		t.Fatalf("config dir = %q, want %q", got, dir)
	}
}
