package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes the request pipeline in front of the session API. The first
// middleware is the outermost: Chain(RequestID(), Recovery(log))(h) runs
// RequestID before Recovery. Nil entries are skipped so optional layers can
// be switched off by configuration.
func Chain(mws ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			if mws[i] == nil {
				continue
			}
			final = mws[i](final)
		}
		return final
	}
}
