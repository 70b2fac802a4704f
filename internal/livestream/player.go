package livestream

import (
	"html/template"
	"io"
	"net/url"
)

const (
	playerScriptURL = "https://cdn.jsdelivr.net/npm/@mux/mux-player"
	thumbnailHost   = "https://image.mux.com/"
)

// NoPlaybackMessage is shown when a stream has nothing to play yet.
const NoPlaybackMessage = "No playback ID available for this stream."

// Player is the view model of the player widget.
type Player struct {
	PlaybackID string
	IsLive     bool
}

// Available reports whether there is a playback ID to embed.
func (p Player) Available() bool { return p.PlaybackID != "" }

// PosterURL returns the thumbnail URL for the player. Live streams ask for
// the latest frame instead of the asset's default thumbnail.
func (p Player) PosterURL() string {
	u := thumbnailHost + url.PathEscape(p.PlaybackID) + "/thumbnail.jpg"
	if p.IsLive {
		u += "?latest=true"
	}
	return u
}

// PlayerFor builds the widget for a lookup result. A missing record and a
// record with an empty playback ID both yield the fallback widget.
func PlayerFor(rec StreamRecord, found bool) Player {
	if !found {
		return Player{}
	}
	return Player{PlaybackID: rec.PlaybackID, IsLive: rec.IsLive}
}

var playerTemplate = template.Must(template.New("player").Parse(`<p class="wp-block-mux-livestream">
{{- if .Player.Available}}
<script src="{{.ScriptURL}}"></script>
<mux-player playback-id="{{.Player.PlaybackID}}" poster="{{.Player.PosterURL}}"></mux-player>
{{- else}}
<span>{{.Fallback}}</span>
{{- end}}
</p>
`))

// RenderPlayer writes the widget markup for p to w.
func RenderPlayer(w io.Writer, p Player) error {
	return playerTemplate.Execute(w, struct {
		Player    Player
		ScriptURL string
		Fallback  string
	}{
		Player:    p,
		ScriptURL: playerScriptURL,
		Fallback:  NoPlaybackMessage,
	})
}
