package testutil

import (
	"net/http"

	id "travelogy/pkg/domain"
	"travelogy/pkg/requestcontext"
)

// WithUserID stamps an authenticated user onto the request context, standing
// in for the auth middleware. Invalid UUIDs leave the request untouched.
func WithUserID(req *http.Request, userID string) *http.Request {
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
}

// WithClientMetadata stamps client IP and user agent onto the request
// context the way the client metadata middleware would.
func WithClientMetadata(req *http.Request, ip, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, userAgent))
}
