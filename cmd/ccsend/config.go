package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gato001k1/CC1101-Tools/cc1101"
)

// linkConfig describes how to reach the gateway.
type linkConfig struct {
	Port         string
	Baud         int
	SSHAddr      string
	SSHUser      string
	SSHPassword  string
	SSHCommand   string
	FragmentSize int
}

// fileConfig is the TOML shape of a link config file.
type fileConfig struct {
	Port         string `toml:"port"`
	Baud         int    `toml:"baud"`
	SSHAddr      string `toml:"ssh_addr"`
	SSHUser      string `toml:"ssh_user"`
	SSHPassword  string `toml:"ssh_password"`
	SSHCommand   string `toml:"ssh_command"`
	FragmentSize int    `toml:"fragment_size"`
}

func defaultLinkConfig() *linkConfig {
	return &linkConfig{
		Baud:         cc1101.DefaultBaudRate,
		FragmentSize: cc1101.MaxFragmentSize,
	}
}

// loadLinkConfig reads a TOML config file on top of the defaults. Only keys
// present in the file override.
func loadLinkConfig(path string) (*linkConfig, error) {
	cfg := defaultLinkConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load link config: %w", err)
	}

	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("baud") {
		if raw.Baud < 1 {
			return nil, fmt.Errorf("load link config: invalid baud %d", raw.Baud)
		}
		cfg.Baud = raw.Baud
	}
	if meta.IsDefined("ssh_addr") {
		cfg.SSHAddr = strings.TrimSpace(raw.SSHAddr)
	}
	if meta.IsDefined("ssh_user") {
		cfg.SSHUser = strings.TrimSpace(raw.SSHUser)
	}
	if meta.IsDefined("ssh_password") {
		cfg.SSHPassword = raw.SSHPassword
	}
	if meta.IsDefined("ssh_command") {
		cfg.SSHCommand = strings.TrimSpace(raw.SSHCommand)
	}
	if meta.IsDefined("fragment_size") {
		if raw.FragmentSize < 1 || raw.FragmentSize > cc1101.MaxFragmentSize {
			return nil, fmt.Errorf("load link config: fragment_size %d outside 1..%d",
				raw.FragmentSize, cc1101.MaxFragmentSize)
		}
		cfg.FragmentSize = raw.FragmentSize
	}

	return cfg, nil
}

// resolveLinkConfig layers flags and the environment over the config file.
func resolveLinkConfig(path string) (*linkConfig, error) {
	var cfg *linkConfig
	var err error

	if path != "" {
		cfg, err = loadLinkConfig(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = defaultLinkConfig()
	}

	if *port != "" {
		cfg.Port = *port
	}
	if *baud != cc1101.DefaultBaudRate {
		cfg.Baud = *baud
	}
	if *sshAddr != "" {
		cfg.SSHAddr = *sshAddr
	}
	if *sshUser != "" {
		cfg.SSHUser = *sshUser
	}
	if *sshPass != "" {
		cfg.SSHPassword = *sshPass
	}
	if cfg.SSHPassword == "" {
		cfg.SSHPassword = os.Getenv("CC1101_SSH_PASSWORD")
	}
	if *fragSize != cc1101.MaxFragmentSize {
		if *fragSize < 1 || *fragSize > cc1101.MaxFragmentSize {
			return nil, fmt.Errorf("fragment size %d outside 1..%d", *fragSize, cc1101.MaxFragmentSize)
		}
		cfg.FragmentSize = *fragSize
	}

	return cfg, nil
}
