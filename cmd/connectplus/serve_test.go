package main

import (
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/connect-plus/internal/config"
)

func TestServeRejectsUnknownOpponent(t *testing.T) {
	match := config.DefaultMatchConfig()
	match.Players = []config.PlayerConfig{
		{Kind: config.KindHuman},
		{Kind: "nobody"},
	}

	err := serve(nil, match)
	if err == nil {
		t.Fatal("serve() with an unknown opponent succeeded, want error")
	}
	if !strings.Contains(err.Error(), "unknown kind") {
		t.Errorf("serve() error = %v, want it to name the unknown kind", err)
	}
}

func TestServeReportsListenFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() failed: %v", err)
	}
	defer busy.Close()

	oldAddr, oldKey := flagSSHAddr, flagHostKey
	defer func() { flagSSHAddr, flagHostKey = oldAddr, oldKey }()
	flagSSHAddr = busy.Addr().String()
	flagHostKey = filepath.Join(t.TempDir(), "host_key")

	match := config.DefaultMatchConfig()
	match.Players = []config.PlayerConfig{
		{Kind: config.KindHuman},
		{Kind: config.KindMinimax},
	}

	if err := serve(nil, match); err == nil {
		t.Fatal("serve() on a busy address succeeded, want error")
	}
}
