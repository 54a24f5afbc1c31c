package testutil

import (
	"net/http"

	"homedisclose/pkg/domain"
	"homedisclose/pkg/requestcontext"
)

// WithCaller attaches an authenticated identity to the request, as the auth
// middleware would after validating a bearer token.
func WithCaller(req *http.Request, userID domain.UserID, email string) *http.Request {
	ctx := requestcontext.WithIdentity(req.Context(), requestcontext.Identity{UserID: userID, Email: email})
	return req.WithContext(ctx)
}

// AsCaller is a router middleware that authenticates every request as the
// identity returned by caller. The func is read per request so suites can
// switch callers between steps.
func AsCaller(caller func() requestcontext.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := caller()
			if !id.IsAuthenticated() {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(r.Context(), id)))
		})
	}
}
