package telemetry

import (
	"ChordDHT/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// IDAttributes renders id as a span attribute under prefix, in its hex form
// (prefix+".hex"), for cross-referencing against log output.
func IDAttributes(prefix string, id domain.ID) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(prefix+".hex", id.Hex()),
	}
}
