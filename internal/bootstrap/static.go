package bootstrap

import (
	"context"

	"ChordDHT/internal/domain"
)

// StaticBootstrap discovers peers from a fixed list supplied at startup
// (spec.md §6 bootstrap mode "static").
type StaticBootstrap struct {
	peers []string
}

func NewStaticBootstrap(peers []string) *StaticBootstrap {
	return &StaticBootstrap{peers: peers}
}

func (s *StaticBootstrap) Discover(ctx context.Context) ([]string, error) {
	return s.peers, nil
}

func (s *StaticBootstrap) Register(ctx context.Context, node *domain.Node) error {
	return nil
}

func (s *StaticBootstrap) Deregister(ctx context.Context, node *domain.Node) error {
	return nil
}
