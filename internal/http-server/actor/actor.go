// Package actor resolves the calling identity from request headers.
// Authentication itself lives at the gateway; the service trusts the
// forwarded X-Actor-ID and X-Actor-Role headers.
package actor

import (
	"net/http"

	"salon-service/api"
)

const (
	headerID   = "X-Actor-ID"
	headerRole = "X-Actor-Role"
)

func FromRequest(r *http.Request) (api.Actor, bool) {
	a := api.Actor{
		ID:   r.Header.Get(headerID),
		Role: r.Header.Get(headerRole),
	}

	if a.ID == "" {
		return a, false
	}

	switch a.Role {
	case "user", "staff", "admin":
		return a, true
	}

	return a, false
}
