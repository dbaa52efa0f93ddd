package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

const (
	// oks for non precomputed, dynamic responses
	CodeOkAuthentication = "ok_authentication"
	CodeOkRegistered     = "ok_registered"
	CodeOkProfile        = "ok_profile"
	CodeOkAvatarUploaded = "ok_avatar_uploaded"
	CodeOkUser           = "ok_user"
	CodeOkUserCreated    = "ok_user_created"
	CodeOkUsersList      = "ok_users_list"
)

type jsonResponse struct {
	status int
	body   []byte
}

// JsonBasic contains the basic response fields. All responses must have them
type JsonBasic struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JsonWithData is used for structured JSON responses with data
type JsonWithData struct {
	JsonBasic
	Data any `json:"data,omitempty"`
}

// SessionData is the data of the responses that authenticate the caller.
type SessionData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// TokenData carries a fresh session token only.
type TokenData struct {
	Token string `json:"token"`
}

// writeJsonWithData writes a structured JSON response with the provided data
func writeJsonWithData(w http.ResponseWriter, resp JsonWithData) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.Status)
	json.NewEncoder(w).Encode(resp)
}

// writeData builds the envelope for a dynamic response.
func writeData(w http.ResponseWriter, status int, code, message string, data any) {
	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{Status: status, Code: code, Message: message},
		Data:      data,
	})
}

// authErrorResponse returns the response for an error of the auth flows.
// The boolean is false for unexpected errors, which are answered with
// errorInternal and must be logged by the caller.
func authErrorResponse(err error) (jsonResponse, bool) {
	for _, e := range errorResponses {
		if errors.Is(err, e.err) {
			return e.resp, true
		}
	}
	return errorInternal, false
}
