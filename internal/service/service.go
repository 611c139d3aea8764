// Package service holds what every page action shares: the request client,
// the auth store and the device block each body starts with.
package service

import (
	"context"

	"klassart-storefront/internal/apiclient"
	"klassart-storefront/internal/domain"
)

// Caller is the subset of *apiclient.Client the page actions use.
type Caller interface {
	Post(ctx context.Context, endpoint string, body any, withToken bool) (*apiclient.Response, error)
	PostRoute(ctx context.Context, route string, body any) (*apiclient.Response, error)
	Upload(ctx context.Context, endpoint string, fields map[string]string, files []apiclient.File, withToken bool) (*apiclient.Response, error)
}

// Sessions exposes the logged in user.
type Sessions interface {
	Current() (domain.Session, bool)
}

// Backend bundles the dependencies of a page action service.
type Backend struct {
	API      Caller
	Sessions Sessions
	Device   domain.Device
}

// Base is the device and identity block most request bodies start with.
type Base struct {
	domain.Device
	domain.Session
}

// Base returns the block for the current user; identity fields are empty when logged out.
func (b Backend) Base() Base {
	var sess domain.Session
	if b.Sessions != nil {
		sess, _ = b.Sessions.Current()
	}
	return Base{Device: b.Device, Session: sess}
}

// Fields returns Base as multipart form fields.
func (b Backend) Fields() map[string]string {
	base := b.Base()
	fields := base.Device.Fields()
	fields["user_id"] = base.UserID
	fields["sess_id"] = base.SessionID
	return fields
}

// RequireSession fails with domain.ErrUnauthenticated when nobody is logged in.
func (b Backend) RequireSession() (domain.Session, error) {
	if b.Sessions == nil {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	sess, ok := b.Sessions.Current()
	if !ok {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	return sess, nil
}

// Call posts body and decodes the data field of a successful reply into out.
func (b Backend) Call(ctx context.Context, endpoint string, body any, withToken bool, out any) error {
	resp, err := b.API.Post(ctx, endpoint, body, withToken)
	if err != nil {
		return err
	}
	return resp.Into(out)
}
