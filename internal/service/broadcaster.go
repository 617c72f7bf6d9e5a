package service

// Session event types pushed to WebSocket subscribers
const (
	EventAdaptiveChanges    = "adaptive_changes"
	EventHeatmapInvalidated = "heatmap_invalidated"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
}
