package cors

import (
	"net/http"

	"github.com/rs/cors"
)

// AddCorsPolicy wraps the router with a policy permissive enough for a
// browser frontend using the cookie session
func AddCorsPolicy(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowCredentials: true,
		Debug:            false,
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
	})

	return c.Handler(handler)
}
