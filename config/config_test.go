package config

import (
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestNewProvider_PanicsOnNil(t *testing.T) {
	t.Parallel()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("NewProvider did not panic with nil config")
		}
	}()
	_ = NewProvider(nil)
}

func TestProvider_GetAndUpdate(t *testing.T) {
	t.Parallel()

	cfg1 := &Config{Server: Server{Addr: ":8080"}}
	provider := NewProvider(cfg1)
	if !reflect.DeepEqual(cfg1, provider.Get()) {
		t.Errorf("Get() got = %v, want %v", provider.Get(), cfg1)
	}

	cfg2 := &Config{Server: Server{Addr: ":9090"}}
	provider.Update(cfg2)
	if provider.Get() != cfg2 {
		t.Errorf("Get() got = %v, want %v", provider.Get(), cfg2)
	}

	provider.Update(nil)
	if provider.Get() != cfg2 {
		t.Errorf("Update(nil) replaced the config")
	}
}

func TestProvider_Concurrency(t *testing.T) {
	t.Parallel()

	cfg1 := &Config{Server: Server{Addr: ":8080"}}
	cfg2 := &Config{Server: Server{Addr: ":9090"}}
	provider := NewProvider(cfg1)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				_ = provider.Get()
			case 1:
				provider.Update(cfg2)
			default:
				provider.Update(cfg1)
			}
		}(i)
	}
	wg.Wait()
}

func TestDuration_UnmarshalText(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name      string
		input     string
		want      time.Duration
		expectErr bool
	}{
		{"Valid seconds", "10s", 10 * time.Second, false},
		{"Valid minutes", "5m", 5 * time.Minute, false},
		{"Invalid format", "bad", 0, true},
		{"Empty input", "", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tc.input))
			if (err != nil) != tc.expectErr {
				t.Fatalf("UnmarshalText() error = %v, expectErr %v", err, tc.expectErr)
			}
			if !tc.expectErr && d.Duration != tc.want {
				t.Errorf("UnmarshalText() got = %v, want %v", d.Duration, tc.want)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	t.Parallel()
	got, err := Duration{10 * time.Minute}.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() returned an unexpected error: %v", err)
	}
	if string(got) != "10m0s" {
		t.Errorf("MarshalText() got = %q, want %q", string(got), "10m0s")
	}
}

func TestLogLevel_UnmarshalText(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name      string
		input     string
		want      slog.Level
		expectErr bool
	}{
		{"Lowercase info", "info", slog.LevelInfo, false},
		{"Uppercase debug", "DEBUG", slog.LevelDebug, false},
		{"Mixed warn", "Warn", slog.LevelWarn, false},
		{"Invalid level", "panic", 0, true},
		{"Empty input", "", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var l LogLevel
			err := l.UnmarshalText([]byte(tc.input))
			if (err != nil) != tc.expectErr {
				t.Fatalf("UnmarshalText() error = %v, expectErr %v", err, tc.expectErr)
			}
			if !tc.expectErr && l.Level != tc.want {
				t.Errorf("UnmarshalText() got = %v, want %v", l.Level, tc.want)
			}
		})
	}
}

func TestLogLevel_MarshalText(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		level LogLevel
		want  string
	}{
		{LogLevel{slog.LevelInfo}, "INFO"},
		{LogLevel{slog.LevelDebug}, "DEBUG"},
		{LogLevel{slog.LevelWarn}, "WARN"},
		{LogLevel{slog.LevelError}, "ERROR"},
	}

	for _, tc := range testCases {
		got, err := tc.level.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() returned an unexpected error: %v", err)
		}
		if string(got) != tc.want {
			t.Errorf("MarshalText() got = %q, want %q", string(got), tc.want)
		}
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		in, method, path string
	}{
		{"POST /api/auth/login", "POST", "/api/auth/login"},
		{"  GET   /api/users/:id ", "GET", "/api/users/:id"},
		{"/no/method", "", ""},
		{"", "", ""},
	}
	for _, tc := range testCases {
		method, path := Split(tc.in)
		if method != tc.method || path != tc.path {
			t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", tc.in, method, path, tc.method, tc.path)
		}
	}
}
