package response

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// PathID parses the {id} route parameter. Returns false unless it is a positive integer.
func PathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
