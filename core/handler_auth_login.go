package core

import (
	"net/http"
)

// LoginHandler handles password-based authentication
// Endpoint: POST /api/auth/login
// Authenticated: No
// Allowed Mimetype: application/json
//
// An unknown email and a wrong password answer the same precomputed body.
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJson(w, r, &req) {
		return
	}

	session, err := a.AuthService().Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeAuthError(w, "login", err)
		return
	}

	writeData(w, http.StatusOK, CodeOkAuthentication, "Authentication successful", SessionData{
		ID:    session.ID,
		Email: session.Email,
		Token: session.Token,
	})
}
