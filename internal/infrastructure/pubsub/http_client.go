package pubsub

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
)

// maxReplySize bounds how much of a failed reply ends up in the error.
const maxReplySize = 512

type client struct {
	http *http.Client
}

func newHTTPClient(requestTimeout time.Duration) *client {
	return &client{&http.Client{Timeout: requestTimeout}}
}

// deliver posts the event payload to the subscription endpoint. Secured
// subscriptions get a bearer JWT whose subject is the event name.
func (c *client) deliver(ctx context.Context, sub Subscription, payload string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, sub.Endpoint, bytes.NewBufferString(payload),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if sub.IsSecured() {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
			IssuedAt: time.Now().Unix(),
			Subject:  sub.Event,
		}).SignedString([]byte(sub.Secret))
		if err != nil {
			return fmt.Errorf("failed to sign webhook token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reply, _ := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
		return fmt.Errorf(
			"webhook %s replied with status %d: %s", sub.ID, resp.StatusCode, reply,
		)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
