package server

import (
	"context"
	"errors"
	"testing"

	"ChordDHT/internal/client"
	"ChordDHT/internal/domain"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatusMapsSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"routing", domain.ErrRouting, codes.Unavailable},
		{"transport", domain.ErrTransport, codes.Unavailable},
		{"domain not found", domain.ErrNotFound, codes.NotFound},
		{"wrapped domain not found", errors.Join(errors.New("get"), domain.ErrNotFound), codes.NotFound},
		{"client not found", client.ErrNotFound, codes.NotFound},
		{"client unavailable", client.ErrUnavailable, codes.Unavailable},
		{"client deadline exceeded", client.ErrDeadlineExceeded, codes.DeadlineExceeded},
		{"context canceled", context.Canceled, codes.Canceled},
		{"context deadline exceeded", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"unknown", errors.New("boom"), codes.Internal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := status.Code(toStatus(tc.err))
			if got != tc.want {
				t.Errorf("toStatus(%v) code = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
