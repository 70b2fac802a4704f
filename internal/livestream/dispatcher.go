package livestream

import (
	"encoding/json"
	"fmt"
)

// Update is the state transition carried by one webhook event.
type Update struct {
	EventType string
	Record    StreamRecord
}

// Dispatch parses an authenticated webhook body and extracts the stream state
// it implies.
//
//	video.live_stream.connected        data.id             -> live
//	video.asset.live_stream_completed  data.live_stream_id -> offline
//
// Both read the playback ID from data.playback_ids[0].id. Any other event type
// returns ErrUnrecognizedEvent together with the parsed type. A recognized
// event missing one of its fields returns ErrMalformedPayload.
func Dispatch(payload []byte) (Update, error) {
	var ev webhookEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Update{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	u := Update{EventType: ev.Type}
	switch ev.Type {
	case EventLiveStreamConnected:
		rec, err := extractRecord(ev.Data, func(d *eventData) (string, string) { return d.ID, "data.id" })
		if err != nil {
			return u, err
		}
		rec.IsLive = true
		u.Record = rec
	case EventAssetLiveStreamCompleted:
		rec, err := extractRecord(ev.Data, func(d *eventData) (string, string) { return d.LiveStreamID, "data.live_stream_id" })
		if err != nil {
			return u, err
		}
		rec.IsLive = false
		u.Record = rec
	default:
		return u, ErrUnrecognizedEvent
	}
	return u, nil
}

// extractRecord decodes the event data and reads the stream ID chosen by
// streamField and the first playback ID.
func extractRecord(raw json.RawMessage, streamField func(*eventData) (value, name string)) (StreamRecord, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return StreamRecord{}, fmt.Errorf("%w: missing data", ErrMalformedPayload)
	}
	d := &eventData{}
	if err := json.Unmarshal(raw, d); err != nil {
		return StreamRecord{}, fmt.Errorf("%w: data: %v", ErrMalformedPayload, err)
	}
	streamID, field := streamField(d)
	if streamID == "" {
		return StreamRecord{}, fmt.Errorf("%w: missing %s", ErrMalformedPayload, field)
	}
	if len(d.PlaybackIDs) == 0 || d.PlaybackIDs[0].ID == "" {
		return StreamRecord{}, fmt.Errorf("%w: missing data.playback_ids[0].id", ErrMalformedPayload)
	}
	return StreamRecord{StreamID: streamID, PlaybackID: d.PlaybackIDs[0].ID}, nil
}
