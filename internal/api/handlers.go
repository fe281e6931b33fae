// Package api exposes HTTP handlers for the sportmeet service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"example.com/sportmeet/internal/auth"
	"example.com/sportmeet/internal/domain"
	"example.com/sportmeet/internal/feed"
	"example.com/sportmeet/internal/geo"
	"example.com/sportmeet/internal/persistence"
)

// Handler coordinates HTTP requests with the domain and feed services.
type Handler struct {
	service *domain.Service
	feeds   *feed.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, feeds *feed.Service) *Handler {
	return &Handler{service: service, feeds: feeds}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activityByID)
	mux.HandleFunc("/v1/feed", h.feed)
	mux.HandleFunc("/v1/users", h.listUsers)
	mux.HandleFunc("/v1/users/", h.userByID)
	mux.HandleFunc("/v1/users/me", h.me)
	mux.HandleFunc("/v1/filters", h.filters)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.getActivity(w, r, id)
	case action == "cancel" && r.Method == http.MethodPost:
		h.cancelActivity(w, r, id)
	case action == "join" && r.Method == http.MethodPost:
		h.joinActivity(w, r, id)
	case action == "leave" && r.Method == http.MethodPost:
		h.leaveActivity(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activity, err := h.service.CreateActivity(r.Context(), req.toInput(claims.Subject))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toActivityView(*activity))
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite); !ok {
		return
	}

	activity, err := h.service.GetActivity(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrActivityNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "activity not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite); !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	activities, next, err := h.service.ListActivities(r.Context(), cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		items = append(items, toActivityView(activity))
	}

	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) cancelActivity(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	if err := h.service.CancelActivity(r.Context(), claims.Subject, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrActivityNotFound):
			writeError(w, http.StatusNotFound, "not_found", "activity not found")
		case errors.Is(err, domain.ErrNotOrganizer):
			writeError(w, http.StatusForbidden, "forbidden", "only the organizer can cancel")
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) joinActivity(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	if err := h.service.JoinActivity(r.Context(), claims.Subject, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrActivityNotFound):
			writeError(w, http.StatusNotFound, "not_found", "activity not found")
		case errors.Is(err, domain.ErrActivityCanceled):
			writeError(w, http.StatusConflict, "conflict", "activity is canceled")
		case errors.Is(err, domain.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "not_found", "user profile not set up")
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) leaveActivity(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	if err := h.service.LeaveActivity(r.Context(), claims.Subject, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "user profile not set up")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	view, err := feed.ParseViewMode(r.URL.Query().Get("view"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	position, err := parsePosition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	result, err := h.feeds.Feed(r.Context(), feed.Query{
		UserID:   claims.Subject,
		View:     view,
		Position: position,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toFeedResponse(result))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireScope(w, r, auth.ScopeUsersRead, auth.ScopeUsersWrite); !ok {
		return
	}

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, toUserView(user))
	}
	writeJSON(w, http.StatusOK, ListUsersResponse{Items: views})
}

// me serves the authenticated caller's own profile. The exact route takes
// precedence over userByID, and "me" is resolved there too, so the literal
// id can never address a stored user.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		claims, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		h.getUser(w, r, claims.Subject)
	case http.MethodPut:
		h.updateProfile(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) userByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing user id")
		return
	}
	if id == "me" {
		claims, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		id = claims.Subject
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.getUser(w, r, id)
	case action == "follow" && r.Method == http.MethodPut:
		h.followUser(w, r, id)
	case action == "follow" && r.Method == http.MethodDelete:
		h.unfollowUser(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireScope(w, r, auth.ScopeUsersRead, auth.ScopeUsersWrite); !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toUserView(*user))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeUsersWrite)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.FullName) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "full_name is required")
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), domain.UpdateProfileInput{
		UserID:     claims.Subject,
		FullName:   req.FullName,
		AboutMe:    req.AboutMe,
		ProfileURL: req.ProfileURL,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toUserView(*user))
}

func (h *Handler) followUser(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeUsersWrite)
	if !ok {
		return
	}

	if err := h.service.FollowUser(r.Context(), claims.Subject, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfFollow):
			writeError(w, http.StatusBadRequest, "validation_failed", "cannot follow yourself")
		case errors.Is(err, domain.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "not_found", "user not found")
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unfollowUser(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeUsersWrite)
	if !ok {
		return
	}

	if err := h.service.UnfollowUser(r.Context(), claims.Subject, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) filters(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeUsersRead, auth.ScopeUsersWrite)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		prefs, err := h.service.Preferences(r.Context(), claims.Subject)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toPreferencesView(prefs))
	case http.MethodPut:
		if !claims.HasScope(auth.ScopeUsersWrite) {
			writeError(w, http.StatusForbidden, "forbidden", "scope users:write required")
			return
		}
		var req PreferencesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := h.service.SetPreferences(r.Context(), claims.Subject, req.toPreferences()); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if !claims.HasScope(auth.ScopeUsersWrite) {
			writeError(w, http.StatusForbidden, "forbidden", "scope users:write required")
			return
		}
		if err := h.service.ClearPreferences(r.Context(), claims.Subject); err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// requireScope resolves claims and checks that at least one scope is present.
func requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+strings.Join(scopes, " or ")+" required")
	return nil, false
}

func parsePosition(r *http.Request) (*geo.Position, error) {
	rawLat := r.URL.Query().Get("latitude")
	rawLon := r.URL.Query().Get("longitude")
	if rawLat == "" && rawLon == "" {
		return nil, nil
	}
	if rawLat == "" || rawLon == "" {
		return nil, errors.New("latitude and longitude must be supplied together")
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return nil, errors.New("invalid latitude")
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return nil, errors.New("invalid longitude")
	}
	return &geo.Position{Latitude: lat, Longitude: lon}, nil
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
