// Package session carries the caller's identity through a request.
//
// Authentication happens upstream; the gateway forwards the verified
// identity in X-User-* headers. Handlers read the Session from the request
// context and pass it explicitly to the service layer.
package session

import (
	"context"
	"net/http"
	"strings"
)

// Roles known to the portal.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleWorker = "worker"
	RoleTenant = "tenant"
	RoleOwner  = "owner"
)

// Header names forwarded by the authenticating gateway.
const (
	HeaderUserID     = "X-User-ID"
	HeaderUserName   = "X-User-Name"
	HeaderUserRole   = "X-User-Role"
	HeaderPropertyID = "X-Property-ID"
	HeaderRoomID     = "X-Room-ID"
)

// Session is the identity of the current caller.
type Session struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	PropertyID  string `json:"property_id,omitempty"` // tenants only
	RoomID      string `json:"room_id,omitempty"`     // tenants only
}

// IsStaff reports whether the session has full back-office access.
func (s Session) IsStaff() bool {
	return s.Role == RoleAdmin || s.Role == RoleStaff
}

// HasRole reports whether the session has one of roles.
func (s Session) HasRole(roles ...string) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// Anonymous reports whether no identity was forwarded.
func (s Session) Anonymous() bool {
	return s.UserID == "" && s.Role == ""
}

// FromRequest builds a Session from the gateway headers.
func FromRequest(r *http.Request) Session {
	return Session{
		UserID:      strings.TrimSpace(r.Header.Get(HeaderUserID)),
		DisplayName: strings.TrimSpace(r.Header.Get(HeaderUserName)),
		Role:        strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole))),
		PropertyID:  strings.TrimSpace(r.Header.Get(HeaderPropertyID)),
		RoomID:      strings.TrimSpace(r.Header.Get(HeaderRoomID)),
	}
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the Session stored in ctx, or the zero Session.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(contextKey{}).(Session)
	return s
}
