package core

import (
	"encoding/json"
	"net/http"

	"github.com/caasmo/accounts/auth"
)

// Standard response codes
const (
	// oks
	CodeOkOtpSent       = "ok_otp_sent"
	CodeOkOtpValid      = "ok_otp_valid"
	CodeOkPasswordReset = "ok_password_reset"
	CodeOkUserDeleted   = "ok_user_deleted"

	// errors
	CodeErrorInvalidRequest        = "err_invalid_input"
	CodeErrorInvalidCredentials    = "err_invalid_credentials"
	CodeErrorMissingFields         = "err_missing_fields"
	CodeErrorEmailRequired         = "err_email_required"
	CodeErrorPasswordRequired      = "err_password_required"
	CodeErrorOtpRequired           = "err_otp_required"
	CodeErrorNewPasswordRequired   = "err_new_password_required"
	CodeErrorPasswordTooLong       = "err_password_too_long"
	CodeErrorInvalidEmail          = "err_invalid_email"
	CodeErrorInvalidRole           = "err_invalid_role"
	CodeErrorEmailConflict         = "err_email_conflict"
	CodeErrorOtpInvalidOrExpired   = "err_otp_invalid_or_expired"
	CodeErrorNotFound              = "err_not_found"
	CodeErrorInternal              = "err_internal"
	CodeErrorForbidden             = "err_forbidden"
	CodeErrorNoAuthHeader          = "err_no_auth_header"
	CodeErrorInvalidTokenFormat    = "err_invalid_token_format"
	CodeErrorJwtInvalidToken       = "err_invalid_token"
	CodeErrorInvalidContentType    = "err_invalid_content_type"
	CodeErrorUnsupportedImage      = "err_unsupported_image"
	CodeErrorTooLarge              = "err_too_large"
	CodeErrorAvatarStorageDisabled = "err_avatar_storage_disabled"
)

// precomputeBasicResponse marshals a basic response once, during package
// initialization. Handlers write the stored bytes without encoding.
func precomputeBasicResponse(status int, code, message string) jsonResponse {
	basic := JsonBasic{
		Status:  status,
		Code:    code,
		Message: message,
	}
	body, _ := json.Marshal(basic)
	return jsonResponse{status: status, body: body}
}

// precomputeWithDataResponse creates a precomputed response with data that includes
// both basic response fields and additional payload data
func precomputeWithDataResponse(status int, code, message string, data any) jsonResponse {
	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  status,
			Code:    code,
			Message: message,
		},
		Data: data,
	}
	body, _ := json.Marshal(response)
	return jsonResponse{status: status, body: body}
}

// Precomputed error and ok responses with status codes
var (
	// errors
	errorInvalidRequest        = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRequest, "The request contains invalid data")
	errorInvalidCredentials    = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidCredentials, "Invalid email or password")
	errorMissingFields         = precomputeBasicResponse(http.StatusBadRequest, CodeErrorMissingFields, "Required fields are missing")
	errorEmailRequired         = precomputeBasicResponse(http.StatusBadRequest, CodeErrorEmailRequired, "Email is required")
	errorPasswordRequired      = precomputeBasicResponse(http.StatusBadRequest, CodeErrorPasswordRequired, "Password is required")
	errorOtpRequired           = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOtpRequired, "OTP is required")
	errorNewPasswordRequired   = precomputeBasicResponse(http.StatusBadRequest, CodeErrorNewPasswordRequired, "New password is required")
	errorPasswordTooLong       = precomputeBasicResponse(http.StatusBadRequest, CodeErrorPasswordTooLong, "Password must be at most 72 bytes")
	errorInvalidEmail          = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidEmail, "Invalid email format")
	errorInvalidRole           = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRole, "Role must be user or admin")
	errorEmailConflict         = precomputeBasicResponse(http.StatusBadRequest, CodeErrorEmailConflict, "Email address is already registered")
	errorOtpInvalidOrExpired   = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOtpInvalidOrExpired, "Invalid or expired OTP")
	errorNotFound              = precomputeBasicResponse(http.StatusNotFound, CodeErrorNotFound, "Requested resource not found")
	errorInternal              = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorInternal, "Internal server error")
	errorForbidden             = precomputeBasicResponse(http.StatusForbidden, CodeErrorForbidden, "Require admin role")
	errorNoAuthHeader          = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorNoAuthHeader, "Authorization header is required")
	errorInvalidTokenFormat    = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidTokenFormat, "Invalid authorization token format")
	errorJwtInvalidToken       = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorJwtInvalidToken, "Invalid authentication token")
	errorInvalidContentType    = precomputeBasicResponse(http.StatusUnsupportedMediaType, CodeErrorInvalidContentType, "Unsupported media type")
	errorUnsupportedImage      = precomputeBasicResponse(http.StatusUnsupportedMediaType, CodeErrorUnsupportedImage, "Avatar must be a png, jpeg, gif or webp image")
	errorTooLarge              = precomputeBasicResponse(http.StatusRequestEntityTooLarge, CodeErrorTooLarge, "Request body is too large")
	errorAvatarStorageDisabled = precomputeBasicResponse(http.StatusServiceUnavailable, CodeErrorAvatarStorageDisabled, "Avatar storage is not configured")

	// oks
	okOtpSent     = precomputeBasicResponse(http.StatusOK, CodeOkOtpSent, auth.ForgotPasswordMessage)
	okOtpValid    = precomputeBasicResponse(http.StatusOK, CodeOkOtpValid, "OTP is valid")
	okUserDeleted = precomputeBasicResponse(http.StatusOK, CodeOkUserDeleted, "User deleted")
)

// errorResponses maps the auth flow errors to their response. Errors not
// listed are internal.
var errorResponses = []struct {
	err  error
	resp jsonResponse
}{
	{auth.ErrEmailRequired, errorEmailRequired},
	{auth.ErrPasswordRequired, errorPasswordRequired},
	{auth.ErrOtpRequired, errorOtpRequired},
	{auth.ErrNewPasswordRequired, errorNewPasswordRequired},
	{auth.ErrPasswordTooLong, errorPasswordTooLong},
	{auth.ErrInvalidEmail, errorInvalidEmail},
	{auth.ErrEmailTaken, errorEmailConflict},
	{auth.ErrInvalidCredentials, errorInvalidCredentials},
	{auth.ErrOtpInvalidOrExpired, errorOtpInvalidOrExpired},
}

// For successful precomputed responses
func writeJsonOk(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}

// writeJsonError writes a precomputed JSON error response
func writeJsonError(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}
