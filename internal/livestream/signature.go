package livestream

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the HTTP header Mux uses to sign webhook deliveries.
// Its value has the form "t=<unix-timestamp>,v1=<hex-hmac-sha256>".
const SignatureHeader = "Mux-Signature"

const (
	timestampPrefix = "t="
	hashPrefix      = "v1="
)

// VerifySignature reports whether header is a valid Mux signature of body
// under secret.
//
// The signed message is the timestamp, a '.', then the raw body. Only the
// first two comma-separated parts of the header are read; any further parts
// are ignored. The hash comparison runs in constant time.
func VerifySignature(body []byte, header, secret string) bool {
	timestamp, provided, ok := parseSignatureHeader(header)
	if !ok {
		return false
	}
	expected := computeSignature(body, timestamp, secret)
	return hmac.Equal([]byte(expected), []byte(provided))
}

// SignHeader returns a Mux-Signature header value for body signed with secret
// at the given time.
func SignHeader(body []byte, secret string, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	return timestampPrefix + timestamp + "," + hashPrefix + computeSignature(body, timestamp, secret)
}

// parseSignatureHeader splits "t=<ts>,v1=<hash>" into its timestamp and hash.
func parseSignatureHeader(header string) (timestamp, hash string, ok bool) {
	if header == "" {
		return "", "", false
	}
	parts := strings.Split(header, ",")
	if len(parts) < 2 {
		return "", "", false
	}
	if !strings.HasPrefix(parts[0], timestampPrefix) || !strings.HasPrefix(parts[1], hashPrefix) {
		return "", "", false
	}
	timestamp = strings.TrimPrefix(parts[0], timestampPrefix)
	hash = strings.TrimPrefix(parts[1], hashPrefix)
	if timestamp == "" || hash == "" {
		return "", "", false
	}
	return timestamp, hash, true
}

// computeSignature returns hex(HMAC-SHA256(secret, timestamp + "." + body)).
func computeSignature(body []byte, timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SecretSource supplies the shared webhook secret at verification time.
type SecretSource interface {
	WebhookSecret() string
}

// StaticSecret is a SecretSource backed by a fixed value.
type StaticSecret string

// WebhookSecret implements SecretSource.
func (s StaticSecret) WebhookSecret() string { return string(s) }

// Verifier authenticates webhook deliveries against an injected secret.
type Verifier struct {
	secrets SecretSource
}

// NewVerifier returns a Verifier that reads the secret from src on every call,
// so a rotated secret takes effect without a restart.
func NewVerifier(src SecretSource) *Verifier {
	return &Verifier{secrets: src}
}

// Verify returns nil when header authenticates body. It returns
// ErrMisconfiguredSecret when no secret is configured and ErrAuthentication
// for any other failure.
func (v *Verifier) Verify(body []byte, header string) error {
	secret := ""
	if v.secrets != nil {
		secret = v.secrets.WebhookSecret()
	}
	if secret == "" {
		return ErrMisconfiguredSecret
	}
	if !VerifySignature(body, header, secret) {
		return ErrAuthentication
	}
	return nil
}
