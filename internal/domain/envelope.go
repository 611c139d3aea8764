package domain

import "encoding/json"

// Device is the metadata block the backend expects in every request body.
type Device struct {
	Device     string `json:"device"`
	AppVersion string `json:"app_version"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
}

// Fields returns the device block as multipart form fields.
func (d Device) Fields() map[string]string {
	return map[string]string{
		"device":      d.Device,
		"app_version": d.AppVersion,
		"latitude":    d.Latitude,
		"longitude":   d.Longitude,
	}
}

// Envelope is the response shape shared by all backend endpoints.
type Envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data,omitempty"`
	Message  string          `json:"message,omitempty"`
	Redirect bool            `json:"redirect,omitempty"`
	// Error is a boolean from the backend but a message string from some relays.
	Error FlexString `json:"error,omitempty"`
}

// Failed reports whether the envelope signals a business error.
func (e Envelope) Failed() bool {
	if e.Error != "" && e.Error != "false" {
		return true
	}
	return !e.Success
}

// ErrorMessage picks the most specific message available.
func (e Envelope) ErrorMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != "" && e.Error != "true" && e.Error != "false" {
		return e.Error.String()
	}
	return ""
}
