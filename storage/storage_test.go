package storage

import (
	"errors"
	"strings"
	"testing"
)

func TestCleanKey(t *testing.T) {
	testCases := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"avatars/u1/a.png", "avatars/u1/a.png", false},
		{"avatars//u1/./a.png", "avatars/u1/a.png", false},
		{"", "", true},
		{"/etc/passwd", "", true},
		{"../secret", "", true},
		{"avatars/../../secret", "", true},
		{"avatars\\u1", "", true},
		{".", "", true},
	}
	for _, tc := range testCases {
		got, err := CleanKey(tc.key)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidKey) {
				t.Errorf("CleanKey(%q) error = %v, want ErrInvalidKey", tc.key, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("CleanKey(%q) = (%q, %v), want %q", tc.key, got, err, tc.want)
		}
	}
}

func TestAvatarKey(t *testing.T) {
	k1 := AvatarKey("user-1", ".png")
	k2 := AvatarKey("user-1", ".png")
	if k1 == k2 {
		t.Error("AvatarKey should be unique per call")
	}
	if !strings.HasPrefix(k1, "avatars/user-1/") || !strings.HasSuffix(k1, ".png") {
		t.Errorf("unexpected key %q", k1)
	}
	if _, err := CleanKey(k1); err != nil {
		t.Errorf("AvatarKey produced an invalid key: %v", err)
	}
}

func TestDetectImage(t *testing.T) {
	testCases := []struct {
		name     string
		head     []byte
		wantType string
		wantExt  string
		ok       bool
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), "image/png", ".png", true},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF"), "image/jpeg", ".jpg", true},
		{"gif", []byte("GIF89a\x01\x00\x01\x00"), "image/gif", ".gif", true},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), "image/webp", ".webp", true},
		{"text", []byte("hello world"), "", "", false},
		{"pdf", []byte("%PDF-1.7"), "", "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ct, ext, ok := DetectImage(tc.head)
			if ok != tc.ok || ct != tc.wantType || ext != tc.wantExt {
				t.Errorf("DetectImage() = (%q, %q, %v), want (%q, %q, %v)", ct, ext, ok, tc.wantType, tc.wantExt, tc.ok)
			}
		})
	}
}
