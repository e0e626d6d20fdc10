package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gato001k1/CC1101-Tools/cc1101"
)

func TestLoadLinkConfig(t *testing.T) {
	cfg, err := loadLinkConfig("ex.config.toml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "/dev/ttyUSB0" {
		t.Fatalf("unexpected port: %q", cfg.Port)
	}
	if cfg.Baud != 57600 {
		t.Fatalf("unexpected baud: %d", cfg.Baud)
	}
	if cfg.FragmentSize != 32 {
		t.Fatalf("unexpected fragment size: %d", cfg.FragmentSize)
	}
	if cfg.SSHAddr != "bench-pi:22" {
		t.Fatalf("unexpected ssh addr: %q", cfg.SSHAddr)
	}
	if cfg.SSHUser != "pi" {
		t.Fatalf("unexpected ssh user: %q", cfg.SSHUser)
	}
	if cfg.SSHPassword != "" {
		t.Fatalf("unexpected ssh password: %q", cfg.SSHPassword)
	}
	if cfg.SSHCommand != "gateway-console" {
		t.Fatalf("unexpected ssh command: %q", cfg.SSHCommand)
	}
}

func TestLoadLinkConfigPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link.toml")
	if err := os.WriteFile(path, []byte("port = \"COM3\"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadLinkConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "COM3" {
		t.Fatalf("unexpected port: %q", cfg.Port)
	}
	if cfg.Baud != cc1101.DefaultBaudRate {
		t.Fatalf("baud default not kept: %d", cfg.Baud)
	}
	if cfg.FragmentSize != cc1101.MaxFragmentSize {
		t.Fatalf("fragment size default not kept: %d", cfg.FragmentSize)
	}
}

func TestLoadLinkConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "zero baud", body: "baud = 0\n"},
		{name: "oversized fragment", body: "fragment_size = 128\n"},
		{name: "zero fragment", body: "fragment_size = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "link.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := loadLinkConfig(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
