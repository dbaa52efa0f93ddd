package core

import (
	"net/http"

	"github.com/caasmo/accounts/config"
)

const CodeOkEndpoints = "ok_endpoints_list"

// NewEndpointsData returns the public routes by name, for clients that
// discover the API instead of hardcoding paths. The metrics route is
// operator only and not listed.
func NewEndpointsData(e *config.Endpoints) map[string]string {
	return map[string]string{
		"register":        e.Register,
		"login":           e.Login,
		"forgot_password": e.ForgotPassword,
		"reset_password":  e.ResetPassword,
		"verify_otp":      e.VerifyOtp,
		"profile":         e.Profile,
		"update_profile":  e.UpdateProfile,
		"upload_avatar":   e.UploadAvatar,
		"create_user":     e.CreateUser,
		"list_users":      e.ListUsers,
		"get_user":        e.GetUser,
		"update_user":     e.UpdateUser,
		"delete_user":     e.DeleteUser,
	}
}

// ListEndpointsHandler
// Endpoint: GET /api/endpoints
// Authenticated: No
func (a *App) ListEndpointsHandler(w http.ResponseWriter, r *http.Request) {
	endpoints := NewEndpointsData(&a.Config().Endpoints)
	writeData(w, http.StatusOK, CodeOkEndpoints, "List of all available endpoints", endpoints)
}

// NotFoundHandler answers every unmatched route.
func (a *App) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonError(w, errorNotFound)
}
