package bigip

import (
	"context"
	"errors"
	"fmt"
)

// sessionNamespace is the interface that hands out session identifiers.
const sessionNamespace = "System.Session"

// WithSession returns an independent client bound to the given session
// identifier. Every call made through it carries the identifier in the
// X-iControl-Session header, which scopes server-side state such as open
// transactions and the active folder to this client.
//
// The derived client shares the parent's transport and credentials but
// starts with empty schema caches, so two session clients never contend
// on shared state.
func (c *Client) WithSession(id string) *Client {
	return &Client{
		host:       c.host,
		cfg:        c.cfg,
		endpoint:   c.endpoint,
		portal:     c.portal,
		logger:     c.logger,
		session:    id,
		namespaces: make(map[string]*Namespace),
		services:   make(map[string]*Service),
	}
}

// NewSession asks the appliance for a fresh session identifier and
// returns a client bound to it. Appliances older than 11.0 do not declare
// the identifier method; those fail with a method-not-found error.
func (c *Client) NewSession(ctx context.Context) (*Client, error) {
	svc, err := c.Resolve(ctx, sessionNamespace)
	if err != nil {
		return nil, err
	}
	m, err := svc.Method("get_session_identifier")
	if err != nil {
		if errors.Is(err, ErrMethodNotFound) {
			return nil, opError(KindMethodNotFound, sessionNamespace, "get_session_identifier",
				"this appliance does not support sessions (requires 11.0 or newer)", err)
		}
		return nil, err
	}
	res, err := m.Invoke(ctx)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, opError(KindParse, sessionNamespace, "get_session_identifier",
			"appliance returned no session identifier", nil)
	}
	return c.WithSession(fmt.Sprint(res)), nil
}
