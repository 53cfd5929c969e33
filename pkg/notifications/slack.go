package notifications

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// maxBodySize caps how much of a rejection response is kept for diagnostics.
const maxBodySize = 64 * 1024

// Webhook posts messages to a Slack compatible incoming webhook.
type Webhook struct {
	URL       string
	UserAgent string
	Client    *http.Client
}

// RejectedError is returned when the webhook answers with a non-2xx status.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("webhook responded with %d: %s", e.StatusCode, e.Body)
}

// Post sends the message in a single request. It does not retry.
func (w *Webhook) Post(ctx context.Context, msg *Message) error {
	payload, err := msg.Payload()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "invalid webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	if w.UserAgent != "" {
		req.Header.Set("User-Agent", w.UserAgent)
	}

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}

	logrus.Debugf("posting %d bytes to channel %s", len(payload), msg.Channel())
	res, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "could not post to webhook")
	}
	defer res.Body.Close()

	body, err := ioutil.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return errors.Wrapf(err, "cannot read webhook response, status: %d", res.StatusCode)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &RejectedError{
			StatusCode: res.StatusCode,
			Body:       string(body),
		}
	}

	logrus.Tracef("webhook response: %s", string(body))
	return nil
}
