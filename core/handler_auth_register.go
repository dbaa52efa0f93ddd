package core

import (
	"net/http"

	"github.com/caasmo/accounts/auth"
)

// RegisterHandler creates an account with role user and logs it in
// Endpoint: POST /api/auth/register
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJson(w, r, &req) {
		return
	}

	session, err := a.AuthService().Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		a.writeAuthError(w, "register", err)
		return
	}

	writeData(w, http.StatusCreated, CodeOkRegistered, "User registered", SessionData{
		ID:    session.ID,
		Email: session.Email,
		Token: session.Token,
	})
}

// writeAuthError answers a failed auth flow. Unexpected errors are logged
// and answered with errorInternal.
func (a *App) writeAuthError(w http.ResponseWriter, op string, err error) {
	resp, known := authErrorResponse(err)
	if !known {
		a.Logger().Error("auth flow failed", "operation", op, "error", err)
	}
	writeJsonError(w, resp)
}
