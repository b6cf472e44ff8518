// Package metrics provides constants used across metric definitions.
package metrics

// Histogram bucket parameters.
const (
	BucketStart1ms  = 0.001
	BucketFactor2   = 2
	BucketCount12   = 12
	BucketStart1s   = 1.0
	BucketCount10   = 10
	BucketFactorSSE = 3
	BucketStart64B  = 64
)

// Transport labels for live connections.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)
