package httpx

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// sessionCookieName carries the signed session token between requests.
const sessionCookieName = "auth_token"

type authContextKey string

const contextKeyOwner authContextKey = "taskflow-owner-id"

type contextSetter interface {
	SetContext(context.Context)
}

// requireAuth ensures the request carries a valid session cookie before
// invoking the handler. Missing cookie, malformed token, bad signature and
// elapsed expiry are all the same uniform 401.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, _, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		if setter, ok := w.(contextSetter); ok {
			setter.SetContext(ctx)
		}
		next(w, req.WithContext(ctx))
	}
}

// ensureAuth resolves the session cookie and enriches the context with the
// owner id.
func (r *Router) ensureAuth(w http.ResponseWriter, req *http.Request) (context.Context, primitive.ObjectID, bool) {
	cookie, err := req.Cookie(sessionCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return req.Context(), primitive.NilObjectID, false
	}
	ownerID, err := r.auth.Verify(cookie.Value)
	if err != nil {
		r.logger.Warn("session token rejected", "error", err, "path", req.URL.Path)
		writeError(w, http.StatusUnauthorized, "authentication required")
		return req.Context(), primitive.NilObjectID, false
	}
	ctx := context.WithValue(req.Context(), contextKeyOwner, ownerID)
	return ctx, ownerID, true
}

// ownerFromContext extracts the resolved caller id from context.
func ownerFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	value := ctx.Value(contextKeyOwner)
	if value == nil {
		return primitive.NilObjectID, false
	}
	id, ok := value.(primitive.ObjectID)
	return id, ok && !id.IsZero()
}

// setSessionCookie attaches the session token to the response. Secure is
// enabled outside development so the cookie only travels over TLS.
func (r *Router) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(r.sessionTTL / time.Second),
		HttpOnly: true,
		Secure:   r.environment != "development",
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookie expires the session cookie immediately.
func (r *Router) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.environment != "development",
		SameSite: http.SameSiteStrictMode,
	})
}
