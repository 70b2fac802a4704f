package livestream

import "encoding/json"

// StreamRecord is the current playback state of one operator-chosen stream ID.
// There is at most one record per StreamID; writes replace it wholesale.
type StreamRecord struct {
	StreamID   string `json:"stream_id"`
	PlaybackID string `json:"playback_id"`
	IsLive     bool   `json:"is_live"`
}

// Event types delivered by Mux that change stream state.
const (
	EventLiveStreamConnected      = "video.live_stream.connected"
	EventAssetLiveStreamCompleted = "video.asset.live_stream_completed"
)

// webhookEvent is the envelope of a Mux webhook body. Data is decoded only
// for event types the dispatcher acts on.
type webhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type eventData struct {
	ID           string       `json:"id"`
	LiveStreamID string       `json:"live_stream_id"`
	PlaybackIDs  []playbackID `json:"playback_ids"`
}

type playbackID struct {
	ID     string `json:"id"`
	Policy string `json:"policy,omitempty"`
}
