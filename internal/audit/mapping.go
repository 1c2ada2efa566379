package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// Admin route overrides.
const (
	adminListRoute   = "POST /api/admin"
	adminDeleteRoute = "DELETE /api/admin/{id}"
)

// ParseRoute returns action and resource for a request method and chi route pattern
// (e.g. PATCH /api/sleep/{id} -> update sleep). Action is one of get, list, create,
// update, delete, or the lowercase method for others. Resource is the first path
// segment after /api (day-rating -> rating, logs -> log, tasks -> task).
func ParseRoute(method, pattern string) ActionResource {
	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	switch method + " " + pattern {
	case adminListRoute:
		return ActionResource{Action: "list", Resource: "user"}
	case adminDeleteRoute:
		return ActionResource{Action: ActionUserDeleted, Resource: "user"}
	}

	rest := strings.TrimPrefix(strings.Trim(pattern, "/"), "api/")
	if rest == "" || rest == "api" {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	segments := strings.Split(rest, "/")
	resource := segmentToResource(segments[0])
	hasID := len(segments) > 1 && strings.HasPrefix(segments[1], "{")

	if resource == "auth" && len(segments) > 1 {
		return ActionResource{Action: segments[1], Resource: "auth"}
	}
	return ActionResource{Action: methodToAction(method, hasID), Resource: resource}
}

func segmentToResource(seg string) string {
	switch seg {
	case "day-rating":
		return "rating"
	case "":
		return "unknown"
	}
	return strings.TrimSuffix(seg, "s")
}

func methodToAction(method string, hasID bool) string {
	switch method {
	case http.MethodGet:
		if hasID {
			return "get"
		}
		return "list"
	case http.MethodPost:
		return "create"
	case http.MethodPatch, http.MethodPut:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
