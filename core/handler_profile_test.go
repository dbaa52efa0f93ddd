package core

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/caasmo/accounts/db"
)

var pngHead = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func TestProfileHandler(t *testing.T) {
	ta := newTestApp(t)
	ann := ta.createUser(t, "ann@x.com", "Secret1", db.RoleUser)

	t.Run("unauthenticated", func(t *testing.T) {
		rr := ta.do(t, "GET", "/api/auth/profile", "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rr.Code)
		}
	})

	t.Run("sanitized record", func(t *testing.T) {
		// leave a pending otp on the record
		ta.do(t, "POST", "/api/auth/forgot-password", `{"email":"ann@x.com"}`, "")
		ta.app.AuthService().Wait()

		rr := ta.do(t, "GET", "/api/auth/profile", "", ta.token(t, ann.ID))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		env := decodeEnvelope(t, rr)
		var data map[string]any
		decodeData(t, env, &data)

		if data["id"] != ann.ID || data["email"] != "ann@x.com" || data["role"] != "user" {
			t.Errorf("unexpected profile %v", data)
		}
		for _, key := range []string{"password", "Password", "otp_hash", "OtpHash", "otp_expires", "OtpExpires"} {
			if _, ok := data[key]; ok {
				t.Errorf("profile exposes %q", key)
			}
		}
		if strings.Contains(rr.Body.String(), ann.Password) {
			t.Error("profile contains the password hash")
		}
	})
}

func TestUpdateProfileHandler(t *testing.T) {
	ta := newTestApp(t)
	ann := ta.createUser(t, "ann@x.com", "Secret1", db.RoleUser)
	token := ta.token(t, ann.ID)

	// warm the authenticated user cache
	if rr := ta.do(t, "GET", "/api/auth/profile", "", token); rr.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", rr.Code)
	}

	t.Run("missing name", func(t *testing.T) {
		rr := ta.do(t, "PUT", "/api/auth/profile", `{"name":"  "}`, token)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("updates name only", func(t *testing.T) {
		rr := ta.do(t, "PUT", "/api/auth/profile", `{"name":"Ann B","email":"evil@x.com","role":"admin"}`, token)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var rec UserRecord
		decodeData(t, decodeEnvelope(t, rr), &rec)
		if rec.Name != "Ann B" || rec.Email != "ann@x.com" || rec.Role != "user" {
			t.Errorf("unexpected record %+v", rec)
		}

		rr = ta.do(t, "GET", "/api/auth/profile", "", token)
		decodeData(t, decodeEnvelope(t, rr), &rec)
		if rec.Name != "Ann B" {
			t.Errorf("profile served a stale name %q", rec.Name)
		}
	})
}

func TestUpdateProfileKeepsNewerPassword(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	ann := ta.createUser(t, "ann@x.com", "Secret1", db.RoleUser)
	token := ta.token(t, ann.ID)

	// the cached user holds the old password hash
	if rr := ta.do(t, "GET", "/api/auth/profile", "", token); rr.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", rr.Code)
	}

	newHash, err := ta.hasher.Hash("NewSecret")
	if err != nil {
		t.Fatal(err)
	}
	now := ta.clock.Now()
	if err := ta.store.SetOtp(ctx, ann.ID, "otp-hash", now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := ta.store.ResetPassword(ctx, ann.ID, "otp-hash", newHash, now); err != nil {
		t.Fatal(err)
	}

	if rr := ta.do(t, "PUT", "/api/auth/profile", `{"name":"Ann B"}`, token); rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	if rr := ta.do(t, "POST", "/api/auth/login", `{"email":"ann@x.com","password":"NewSecret"}`, ""); rr.Code != http.StatusOK {
		t.Errorf("reset password lost: login returned %d", rr.Code)
	}
	if rr := ta.do(t, "POST", "/api/auth/login", `{"email":"ann@x.com","password":"Secret1"}`, ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("old password restored: login returned %d", rr.Code)
	}
}

func newAvatarRequest(t *testing.T, field string, content []byte, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "avatar.bin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/api/auth/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestUploadAvatarHandler(t *testing.T) {
	ta := newTestApp(t)
	ann := ta.createUser(t, "ann@x.com", "Secret1", db.RoleUser)
	token := ta.token(t, ann.ID)

	upload := func(t *testing.T, field string, content []byte) *httptest.ResponseRecorder {
		t.Helper()
		rr := httptest.NewRecorder()
		ta.handler.ServeHTTP(rr, newAvatarRequest(t, field, content, token))
		return rr
	}

	var first string
	t.Run("png accepted", func(t *testing.T) {
		rr := upload(t, "avatar", pngHead)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var rec UserRecord
		decodeData(t, decodeEnvelope(t, rr), &rec)
		if !strings.HasPrefix(rec.Avatar, "avatars/"+ann.ID+"/") || !strings.HasSuffix(rec.Avatar, ".png") {
			t.Fatalf("unexpected avatar key %q", rec.Avatar)
		}
		if !ta.storage.has(rec.Avatar) {
			t.Error("avatar not stored")
		}
		first = rec.Avatar
	})

	t.Run("replacing deletes the previous avatar", func(t *testing.T) {
		gif := append([]byte("GIF89a"), make([]byte, 16)...)
		rr := upload(t, "avatar", gif)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var rec UserRecord
		decodeData(t, decodeEnvelope(t, rr), &rec)
		if !strings.HasSuffix(rec.Avatar, ".gif") {
			t.Errorf("unexpected avatar key %q", rec.Avatar)
		}
		if ta.storage.has(first) {
			t.Error("previous avatar was not deleted")
		}
		if ta.storage.len() != 1 {
			t.Errorf("expected 1 stored object, got %d", ta.storage.len())
		}
	})

	testCases := []struct {
		name       string
		field      string
		content    []byte
		wantStatus int
		wantCode   string
	}{
		{"not an image", "avatar", []byte("just some text"), http.StatusUnsupportedMediaType, CodeErrorUnsupportedImage},
		{"wrong field", "picture", pngHead, http.StatusBadRequest, CodeErrorMissingFields},
		{"too large", "avatar", append(append([]byte{}, pngHead...), make([]byte, 4096)...), http.StatusRequestEntityTooLarge, CodeErrorTooLarge},
	}

	cfg := *ta.app.Config()
	cfg.Storage.MaxAvatarBytes = 1024
	ta.app.configProvider.Update(&cfg)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := upload(t, tc.field, tc.content)
			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rr.Code, rr.Body.String())
			}
			if env := decodeEnvelope(t, rr); env.Code != tc.wantCode {
				t.Errorf("expected code %q, got %q", tc.wantCode, env.Code)
			}
		})
	}

	t.Run("json body rejected", func(t *testing.T) {
		rr := ta.do(t, "POST", "/api/auth/profile/avatar", `{"avatar":"x"}`, token)
		if rr.Code != http.StatusUnsupportedMediaType {
			t.Fatalf("expected status 415, got %d", rr.Code)
		}
		if env := decodeEnvelope(t, rr); env.Code != CodeErrorInvalidContentType {
			t.Errorf("expected code %q, got %q", CodeErrorInvalidContentType, env.Code)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		ta.storage.putErr = errors.New("bucket unavailable")
		defer func() { ta.storage.putErr = nil }()

		rr := upload(t, "avatar", pngHead)
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rr.Code)
		}
		if strings.Contains(rr.Body.String(), "bucket") {
			t.Error("internal detail leaked")
		}
	})
}

func TestUploadAvatarHandler_NoStorage(t *testing.T) {
	app := &App{
		validator: NewValidator(),
	}
	rr := httptest.NewRecorder()
	app.UploadAvatarHandler(rr, newAvatarRequest(t, "avatar", pngHead, ""))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
}
