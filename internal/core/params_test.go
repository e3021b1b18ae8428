// AngelaMos | 2026
// params_test.go

package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLID(t *testing.T) {
	errMissing := NotFoundError("Ressource introuvable")

	var got string
	r := chi.NewRouter()
	r.Get("/things/{thingID}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := URLID(w, r, "thingID", errMissing)
		if !ok {
			return
		}
		got = id
		NoContent(w)
	})

	tests := []struct {
		name   string
		raw    string
		status int
		want   string
	}{
		{"canonical", "6b1f0a52-3c47-4e0e-9a55-2f4d7b1c9e01", http.StatusNoContent, "6b1f0a52-3c47-4e0e-9a55-2f4d7b1c9e01"},
		{"upper case", "6B1F0A52-3C47-4E0E-9A55-2F4D7B1C9E01", http.StatusNoContent, "6b1f0a52-3c47-4e0e-9a55-2f4d7b1c9e01"},
		{"word", "abc", http.StatusNotFound, ""},
		{"number", "42", http.StatusNotFound, ""},
		{"truncated", "6b1f0a52-3c47-4e0e-9a55", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = ""
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/"+tt.raw, nil))

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, got)

			if tt.status == http.StatusNotFound {
				var body Response
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				require.NotNil(t, body.Error)
				assert.Equal(t, "Ressource introuvable", body.Error.Message)
			}
		})
	}
}
