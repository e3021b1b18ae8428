// AngelaMos | 2026
// params.go

package core

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// URLID returns the URL parameter name as a canonical UUID. Every stored row
// is keyed by UUID, so any other value names nothing: URLID writes notFound
// and reports false without touching the store.
func URLID(w http.ResponseWriter, r *http.Request, name string, notFound error) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		JSONError(w, notFound)
		return "", false
	}
	return id.String(), true
}
