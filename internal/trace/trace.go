// Package trace generates the request-scoped trace identifiers carried in
// context.Context across a lookup's hops, independent of the OpenTelemetry
// span IDs produced in internal/telemetry (this ID is logged, not exported).
package trace

import (
	"context"
	"fmt"

	"ChordDHT/internal/domain"

	"github.com/google/uuid"
)

type traceKey struct{}

// GenerateTraceID builds a globally unique trace identifier of the form
// <nodeID>-<uuid>, so a log line can be grepped back to the node that
// originated the request.
func GenerateTraceID(nodeID string) string {
	return fmt.Sprintf("%s-%s", nodeID, uuid.NewString())
}

// AttachTraceID generates a trace ID for nodeID and stores it in ctx,
// returning the new context and the ID itself.
func AttachTraceID(ctx context.Context, nodeID domain.ID) (context.Context, string) {
	traceID := GenerateTraceID(nodeID.String())
	return context.WithValue(ctx, traceKey{}, traceID), traceID
}

// GetTraceID returns the trace ID stored in ctx, or "" if none was attached.
func GetTraceID(ctx context.Context) string {
	if v := ctx.Value(traceKey{}); v != nil {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return ""
}
