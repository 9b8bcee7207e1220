package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// invocationTypeHeader tells the function runtime whether to queue the event
// (EVENT) or run it inline and report the outcome (REQUEST_RESPONSE).
const invocationTypeHeader = "X-Invocation-Type"

// FunctionInvoker dispatches events to a serverless mail function over HTTP.
//
// FireAndForget expects 202 Accepted: the event was queued, delivery is not
// confirmed. RequestResponse expects 200 OK: the function ran and the mail
// was handed to the provider. Any other status or transport error is a
// dispatch failure.
type FunctionInvoker struct {
	url    string
	client *http.Client
}

// NewFunctionInvoker builds an invoker for the function at url.
// The timeout bounds the whole invocation including connection setup.
func NewFunctionInvoker(url string, timeout time.Duration) *FunctionInvoker {
	return &FunctionInvoker{
		url: url,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

var _ Dispatcher = (*FunctionInvoker)(nil)

func (f *FunctionInvoker) Dispatch(ctx context.Context, ev Event, mode Mode) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notify: marshal event for order %s: %w", ev.OrderID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(invocationTypeHeader, string(mode))

	res, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: invoke mail function: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}()

	want := http.StatusOK
	if mode == FireAndForget {
		want = http.StatusAccepted
	}
	if res.StatusCode != want {
		return fmt.Errorf("notify: mail function returned status %d for order %s (mode %s)",
			res.StatusCode, ev.OrderID, mode)
	}
	return nil
}
