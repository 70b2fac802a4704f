package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"mux-livestream/internal/livestream"
)

// signFile reads a webhook body from path ("-" reads stdin) and returns the
// Mux-Signature header value for it.
func signFile(path string, stdin io.Reader, secrets livestream.SecretSource, at time.Time) (string, error) {
	var (
		body []byte
		err  error
	)
	if path == "-" {
		body, err = io.ReadAll(stdin)
	} else {
		body, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	secret := secrets.WebhookSecret()
	if secret == "" {
		return "", errors.New("webhook secret is not configured")
	}
	return livestream.SignHeader(body, secret, at), nil
}
