package core

import (
	"errors"
	"net/http"
	"strings"

	"github.com/caasmo/accounts/auth"
	"github.com/caasmo/accounts/db"
)

type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (a *App) pathParam(r *http.Request, name string) string {
	if a.paramGeter == nil {
		return ""
	}
	return a.paramGeter.Get(r.Context()).ByName(name)
}

// CreateUserHandler creates a user with any role
// Endpoint: POST /api/users
// Authenticated: Yes, admin
// Allowed Mimetype: application/json
func (a *App) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req userRequest
	if !decodeJson(w, r, &req) {
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if !auth.ValidPasswordLength(req.Password) {
		writeJsonError(w, errorPasswordTooLong)
		return
	}
	if !auth.ValidEmail(email) {
		writeJsonError(w, errorInvalidEmail)
		return
	}

	role := db.RoleUser
	if req.Role != "" {
		role = db.Role(req.Role)
	}
	if !role.Valid() {
		writeJsonError(w, errorInvalidRole)
		return
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		a.Logger().Error("failed to hash password", "error", err)
		writeJsonError(w, errorInternal)
		return
	}

	created, err := a.Db().CreateUser(r.Context(), db.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: hash,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, db.ErrEmailConflict) {
			writeJsonError(w, errorEmailConflict)
			return
		}
		a.Logger().Error("failed to create user", "error", err)
		writeJsonError(w, errorInternal)
		return
	}

	writeData(w, http.StatusCreated, CodeOkUserCreated, "User created", NewUserRecord(created))
}

// ListUsersHandler returns every user, oldest first
// Endpoint: GET /api/users
// Authenticated: Yes, admin
func (a *App) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := a.Db().ListUsers(r.Context())
	if err != nil {
		a.Logger().Error("failed to list users", "error", err)
		writeJsonError(w, errorInternal)
		return
	}

	writeData(w, http.StatusOK, CodeOkUsersList, "Users retrieved", newUserRecords(users))
}

// GetUserHandler
// Endpoint: GET /api/users/:id
// Authenticated: Yes, admin
func (a *App) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := a.loadUser(w, r)
	if !ok {
		return
	}

	writeData(w, http.StatusOK, CodeOkUser, "User retrieved", NewUserRecord(user))
}

// UpdateUserHandler changes the non empty fields of the request. A new
// password is hashed. Fields left empty are not written, so a concurrent
// password reset is kept.
// Endpoint: PUT /api/users/:id
// Authenticated: Yes, admin
// Allowed Mimetype: application/json
func (a *App) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req userRequest
	if !decodeJson(w, r, &req) {
		return
	}

	user, ok := a.loadUser(w, r)
	if !ok {
		return
	}

	var patch db.UserPatch
	if name := strings.TrimSpace(req.Name); name != "" {
		patch.Name = &name
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		if !auth.ValidEmail(email) {
			writeJsonError(w, errorInvalidEmail)
			return
		}
		patch.Email = &email
	}
	if req.Role != "" {
		role := db.Role(req.Role)
		if !role.Valid() {
			writeJsonError(w, errorInvalidRole)
			return
		}
		patch.Role = &role
	}
	if req.Password != "" {
		if !auth.ValidPasswordLength(req.Password) {
			writeJsonError(w, errorPasswordTooLong)
			return
		}
		hash, err := a.hasher.Hash(req.Password)
		if err != nil {
			a.Logger().Error("failed to hash password", "error", err)
			writeJsonError(w, errorInternal)
			return
		}
		patch.Password = &hash
	}

	updated, err := a.Db().UpdateUser(r.Context(), user.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrEmailConflict):
			writeJsonError(w, errorEmailConflict)
		case errors.Is(err, db.ErrUserNotFound):
			writeJsonError(w, errorNotFound)
		default:
			a.Logger().Error("failed to update user", "user_id", user.ID, "error", err)
			writeJsonError(w, errorInternal)
		}
		return
	}
	a.EvictUser(user.ID)

	writeData(w, http.StatusOK, CodeOkUser, "User updated", NewUserRecord(updated))
}

// DeleteUserHandler deletes a user and, best effort, its avatar
// Endpoint: DELETE /api/users/:id
// Authenticated: Yes, admin
func (a *App) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := a.loadUser(w, r)
	if !ok {
		return
	}

	if err := a.Db().DeleteUser(r.Context(), user.ID); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			writeJsonError(w, errorNotFound)
			return
		}
		a.Logger().Error("failed to delete user", "user_id", user.ID, "error", err)
		writeJsonError(w, errorInternal)
		return
	}
	a.EvictUser(user.ID)

	if user.Avatar != "" && a.Storage() != nil {
		a.deleteAvatar(user.Avatar)
	}

	writeJsonOk(w, okUserDeleted)
}

// loadUser reads the user named by the id path parameter. On failure the
// response is written and ok is false.
func (a *App) loadUser(w http.ResponseWriter, r *http.Request) (*db.User, bool) {
	id := a.pathParam(r, "id")
	if id == "" {
		writeJsonError(w, errorNotFound)
		return nil, false
	}

	user, err := a.Db().GetUserById(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			writeJsonError(w, errorNotFound)
			return nil, false
		}
		a.Logger().Error("failed to load user", "user_id", id, "error", err)
		writeJsonError(w, errorInternal)
		return nil, false
	}
	return user, true
}
