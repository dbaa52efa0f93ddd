package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/caasmo/accounts/db"
	"github.com/caasmo/accounts/storage"
)

const (
	avatarFormField = "avatar"
	// multipart framing allowed on top of the file itself
	avatarFormOverhead = 64 << 10

	avatarDeleteTimeout = 10 * time.Second
)

// UploadAvatarHandler stores a new avatar image for the authenticated user
// and deletes the previous one.
// Endpoint: POST /api/auth/profile/avatar
// Authenticated: Yes
// Allowed Mimetype: multipart/form-data, file in field "avatar"
func (a *App) UploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	if a.Storage() == nil {
		writeJsonError(w, errorAvatarStorageDisabled)
		return
	}

	if resp, err := a.Validator().ContentType(r, MimeTypeMultipart); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	maxBytes := a.Config().Storage.MaxAvatarBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+avatarFormOverhead)

	data, resp, err := readAvatar(r, maxBytes)
	if err != nil {
		writeJsonError(w, resp)
		return
	}

	contentType, ext, ok := storage.DetectImage(data)
	if !ok {
		writeJsonError(w, errorUnsupportedImage)
		return
	}

	key := storage.AvatarKey(user.ID, ext)
	if err := a.Storage().Put(r.Context(), key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		a.Logger().Error("failed to store avatar", "user_id", user.ID, "key", key, "error", err)
		writeJsonError(w, errorInternal)
		return
	}

	current, err := a.Db().GetUserById(r.Context(), user.ID)
	if err != nil {
		a.Logger().Error("failed to load user for avatar update", "user_id", user.ID, "error", err)
		a.deleteAvatar(key)
		writeJsonError(w, errorInternal)
		return
	}

	previous := current.Avatar
	updated, err := a.Db().UpdateUser(r.Context(), user.ID, db.UserPatch{Avatar: &key})
	if err != nil {
		a.Logger().Error("failed to save avatar", "user_id", user.ID, "error", err)
		a.deleteAvatar(key)
		writeJsonError(w, errorInternal)
		return
	}
	a.EvictUser(user.ID)

	if previous != "" && previous != key {
		a.deleteAvatar(previous)
	}

	writeData(w, http.StatusOK, CodeOkAvatarUploaded, "Avatar uploaded", NewUserRecord(updated))
}

// readAvatar returns the content of the avatar part, at most maxBytes long.
func readAvatar(r *http.Request, maxBytes int64) ([]byte, jsonResponse, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errorInvalidRequest, err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errorMissingFields, errors.New("avatar part not found")
		}
		if err != nil {
			return nil, uploadErrorResponse(err), err
		}

		if part.FormName() != avatarFormField {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, maxBytes+1))
		part.Close()
		if err != nil {
			return nil, uploadErrorResponse(err), err
		}
		if int64(len(data)) > maxBytes {
			return nil, errorTooLarge, errors.New("avatar too large")
		}
		if len(data) == 0 {
			return nil, errorMissingFields, errors.New("empty avatar")
		}
		return data, jsonResponse{}, nil
	}
}

func uploadErrorResponse(err error) jsonResponse {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errorTooLarge
	}
	return errorInvalidRequest
}

// deleteAvatar removes a stored object, best effort, detached from the
// request context.
func (a *App) deleteAvatar(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), avatarDeleteTimeout)
	defer cancel()
	if err := a.Storage().Delete(ctx, key); err != nil {
		a.Logger().Warn("failed to delete avatar", "key", key, "error", err)
	}
}
