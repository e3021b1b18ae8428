// AngelaMos | 2026
// routes.go

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/manufacto/booking/internal/middleware"
)

type adminRoutes interface {
	RegisterAdminRoutes(r chi.Router)
}

// mountAdmin puts every admin handler under /admin behind one
// authentication and role guard. Handlers mounted here never check the
// role themselves.
func mountAdmin(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	groups ...adminRoutes,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireAdmin)

		for _, g := range groups {
			g.RegisterAdminRoutes(r)
		}
	})
}
