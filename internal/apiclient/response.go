package apiclient

import (
	"encoding/json"
	"fmt"

	"klassart-storefront/internal/domain"
)

// Response is a decoded 2xx backend reply.
type Response struct {
	Status   int
	Envelope domain.Envelope
	Body     json.RawMessage
}

// Err reports a business failure (success false or error true) as *APIError.
func (r *Response) Err() error {
	if !r.Envelope.Failed() {
		return nil
	}
	msg := r.Envelope.ErrorMessage()
	if msg == "" {
		msg = msgRequestFailed
	}
	return &APIError{Status: r.Status, Message: msg}
}

// Decode unmarshals the data field into v. An absent data field leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(r.Envelope.Data) == 0 || string(r.Envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Envelope.Data, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// DecodeBody unmarshals the whole response body into v, for endpoints
// that answer with top level fields instead of data.
func (r *Response) DecodeBody(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// Into checks Err and then decodes data into v.
func (r *Response) Into(v any) error {
	if err := r.Err(); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return r.Decode(v)
}
