package accounts

import (
	"net/http"

	"github.com/caasmo/accounts/config"
	"github.com/caasmo/accounts/core"
)

func route(cfg *config.Config, ap *core.App) {
	e := cfg.Endpoints

	routes := []struct {
		endpoint string
		handler  http.Handler
	}{
		// public
		{e.ListEndpoints, http.HandlerFunc(ap.ListEndpointsHandler)},
		{e.Register, http.HandlerFunc(ap.RegisterHandler)},
		{e.Login, http.HandlerFunc(ap.LoginHandler)},
		{e.ForgotPassword, http.HandlerFunc(ap.ForgotPasswordHandler)},
		{e.ResetPassword, http.HandlerFunc(ap.ResetPasswordHandler)},
		{e.VerifyOtp, http.HandlerFunc(ap.VerifyOtpHandler)},
		{e.Metrics, http.HandlerFunc(ap.MetricsHandler)},

		// authenticated
		{e.Profile, ap.RequireAuth(http.HandlerFunc(ap.ProfileHandler))},
		{e.UpdateProfile, ap.RequireAuth(http.HandlerFunc(ap.UpdateProfileHandler))},
		{e.UploadAvatar, ap.RequireAuth(http.HandlerFunc(ap.UploadAvatarHandler))},

		// admin
		{e.CreateUser, ap.RequireAdmin(http.HandlerFunc(ap.CreateUserHandler))},
		{e.ListUsers, ap.RequireAdmin(http.HandlerFunc(ap.ListUsersHandler))},
		{e.GetUser, ap.RequireAdmin(http.HandlerFunc(ap.GetUserHandler))},
		{e.UpdateUser, ap.RequireAdmin(http.HandlerFunc(ap.UpdateUserHandler))},
		{e.DeleteUser, ap.RequireAdmin(http.HandlerFunc(ap.DeleteUserHandler))},
	}

	for _, r := range routes {
		method, path := config.Split(r.endpoint)
		ap.Router().Handle(method, path, r.handler)
	}
	ap.Router().NotFound(http.HandlerFunc(ap.NotFoundHandler))
}
