package ratelimit

import "github.com/danielgtaylor/huma/v2"

// MetadataKey stores per-endpoint rate limit configuration in huma operation
// metadata.
const MetadataKey = "rateLimit"

// EndpointConfig defines per-endpoint rate limit configuration, attached to
// operations via the Metadata field.
type EndpointConfig struct {
	// Limits are checked in order; the request is rejected when any window
	// is over its max.
	Limits []LimitConfig

	// Disabled skips rate limiting entirely for this endpoint.
	Disabled bool
}

// GetEndpointConfig extracts the EndpointConfig from operation metadata.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
