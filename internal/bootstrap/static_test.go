package bootstrap

import (
	"context"
	"testing"

	"ChordDHT/internal/domain"
)

func TestStaticBootstrapDiscoverReturnsConfiguredPeers(t *testing.T) {
	peers := []string{"10.0.0.1:5000", "10.0.0.2:5000"}
	b := NewStaticBootstrap(peers)

	got, err := b.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(got) != len(peers) {
		t.Fatalf("Discover = %v, want %v", got, peers)
	}
	for i := range peers {
		if got[i] != peers[i] {
			t.Fatalf("Discover[%d] = %q, want %q", i, got[i], peers[i])
		}
	}
}

func TestStaticBootstrapRegisterDeregisterAreNoops(t *testing.T) {
	b := NewStaticBootstrap(nil)
	n := &domain.Node{Addr: "127.0.0.1:5000"}

	if err := b.Register(context.Background(), n); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := b.Deregister(context.Background(), n); err != nil {
		t.Fatalf("Deregister returned error: %v", err)
	}
}

func TestStaticBootstrapDiscoverEmptyMeansSoloRing(t *testing.T) {
	b := NewStaticBootstrap(nil)
	got, err := b.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Discover = %v, want empty", got)
	}
}
