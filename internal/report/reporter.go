// Package report delivers computed box dimensions to the external
// collector endpoint.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/banshee-data/boxscan/internal/httputil"
	"github.com/banshee-data/boxscan/internal/scan"
)

// maxAckBytes caps how much of the collector's acknowledgment body is
// read before the connection is released.
const maxAckBytes = 4 * 1024

// SerializationError means the box could not be encoded for transport.
// The send is aborted; nothing reached the network.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("report: could not encode box: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// TransportError means the request produced no usable response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("report: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectedError means the collector answered but did not acknowledge the
// measurement.
type RejectedError struct {
	StatusCode int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("report: collector rejected measurement (status %d)", e.StatusCode)
}

// Reporter posts measurements to a collector endpoint. It sends exactly
// one request per Report call: no retries, and timeouts are whatever the
// injected client enforces.
type Reporter struct {
	client   httputil.HTTPClient
	endpoint string
}

// NewReporter creates a Reporter posting to endpoint via client. A nil
// client uses http.DefaultClient.
func NewReporter(client httputil.HTTPClient, endpoint string) *Reporter {
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	return &Reporter{client: client, endpoint: endpoint}
}

// Report serializes the box as a JSON array of exactly three values in
// [width, height, length] order and POSTs it to the collector.
//
// Success requires a 2xx response carrying an acknowledgment body. A 2xx
// without one (204 No Content in particular) is a RejectedError: the
// collector never confirmed it stored the measurement.
func (r *Reporter) Report(ctx context.Context, box scan.BoundingBox) error {
	payload := [3]float32{box.Width, box.Height, box.Length}
	body, err := json.Marshal(payload)
	if err != nil {
		return &SerializationError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return &SerializationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	ack, err := io.ReadAll(io.LimitReader(resp.Body, maxAckBytes))
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || len(ack) == 0 {
		return &RejectedError{StatusCode: resp.StatusCode}
	}
	return nil
}
