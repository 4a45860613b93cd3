package middlewares

import "net/http"

// CORSMiddleware opens the JSON API to browser clients on other
// origins. Preflight requests are answered by the route handlers.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}
