package core

import (
	"net/http"
	"strings"

	"github.com/caasmo/accounts/db"
)

// ProfileHandler returns the authenticated user
// Endpoint: GET /api/auth/profile
// Authenticated: Yes
func (a *App) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	writeData(w, http.StatusOK, CodeOkProfile, "Profile retrieved", NewUserRecord(user))
}

// UpdateProfileHandler changes the display name of the authenticated user.
// Email, password and role are not editable here.
// Endpoint: PUT /api/auth/profile
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if !decodeJson(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	updated, err := a.Db().UpdateUser(r.Context(), user.ID, db.UserPatch{Name: &name})
	if err != nil {
		a.Logger().Error("failed to update profile", "user_id", user.ID, "error", err)
		writeJsonError(w, errorInternal)
		return
	}
	a.EvictUser(user.ID)

	writeData(w, http.StatusOK, CodeOkProfile, "Profile updated", NewUserRecord(updated))
}
