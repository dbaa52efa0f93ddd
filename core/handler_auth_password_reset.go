package core

import (
	"net/http"
)

// ForgotPasswordHandler sends a one-time code to the email if an account
// exists. The answer never tells whether it does.
// Endpoint: POST /api/auth/forgot-password
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if !decodeJson(w, r, &req) {
		return
	}

	if err := a.AuthService().ForgotPassword(r.Context(), req.Email); err != nil {
		a.writeAuthError(w, "forgot_password", err)
		return
	}

	writeJsonOk(w, okOtpSent)
}

// ResetPasswordHandler sets a new password with a pending one-time code and
// returns a fresh session token.
// Endpoint: POST /api/auth/reset-password
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email       string `json:"email"`
		Otp         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeJson(w, r, &req) {
		return
	}

	session, err := a.AuthService().ResetPassword(r.Context(), req.Email, req.Otp, req.NewPassword)
	if err != nil {
		a.writeAuthError(w, "reset_password", err)
		return
	}

	writeData(w, http.StatusOK, CodeOkPasswordReset, "Password reset successfully", TokenData{Token: session.Token})
}

// VerifyOtpHandler checks a pending one-time code without consuming it.
// Endpoint: POST /api/auth/verify-otp
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) VerifyOtpHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
		Otp   string `json:"otp"`
	}
	if !decodeJson(w, r, &req) {
		return
	}

	if err := a.AuthService().VerifyOtp(r.Context(), req.Email, req.Otp); err != nil {
		a.writeAuthError(w, "verify_otp", err)
		return
	}

	writeJsonOk(w, okOtpValid)
}
