// Package identity provides anonymous per-device identity primitives.
//
// Every browser gets a long-lived device cookie and every tab sends its own
// session header, so one device can hold several independent FitCoach
// sessions side by side.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	DeviceCookieName      = "fitcoach_device_id"
	SessionHeaderName     = "X-FitCoach-Session-ID"
	DefaultSessionIDValue = "default"
	deviceCookieMaxAge    = 30 * 24 * time.Hour
)

type contextKey int

const (
	deviceIDKey contextKey = iota
	sessionIDKey
)

var (
	deviceIDPattern  = regexp.MustCompile(`^dev_[a-f0-9]{32}$`)
	sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)
)

// DeviceIDFromContext extracts the device ID from the request context.
func DeviceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(deviceIDKey).(string); ok {
		return v
	}
	return ""
}

// SessionIDFromContext extracts the tab session ID from the request context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return DefaultSessionIDValue
}

// WithIdentity returns a context carrying the given device and session IDs.
// Hosts without HTTP requests (the CLI, tests) use it to label their calls.
func WithIdentity(ctx context.Context, deviceID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, deviceIDKey, deviceID)
	return context.WithValue(ctx, sessionIDKey, sanitizeSessionID(sessionID))
}

// SessionKey joins device and session into the key used by the session registry.
func SessionKey(deviceID, sessionID string) string {
	return deviceID + ":" + sessionID
}

// KeyFromContext returns SessionKey for the identity carried by ctx.
func KeyFromContext(ctx context.Context) string {
	return SessionKey(DeviceIDFromContext(ctx), SessionIDFromContext(ctx))
}

func generateDeviceID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate device id: %w", err)
	}
	return "dev_" + hex.EncodeToString(buf), nil
}

func isValidDeviceID(id string) bool {
	return deviceIDPattern.MatchString(id)
}

func sanitizeSessionID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || !sessionIDPattern.MatchString(id) {
		return DefaultSessionIDValue
	}
	return id
}

func setDeviceCookie(w http.ResponseWriter, id string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     DeviceCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(deviceCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(deviceCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

func getOrCreateDeviceID(w http.ResponseWriter, r *http.Request, isDev bool) (string, error) {
	if c, err := r.Cookie(DeviceCookieName); err == nil && isValidDeviceID(c.Value) {
		setDeviceCookie(w, c.Value, isDev)
		return c.Value, nil
	}

	id, err := generateDeviceID()
	if err != nil {
		return "", err
	}
	setDeviceCookie(w, id, isDev)
	return id, nil
}

func sessionIDFromRequest(r *http.Request) string {
	sid := r.Header.Get(SessionHeaderName)
	if sid == "" {
		sid = r.URL.Query().Get("session_id")
	}
	return sanitizeSessionID(sid)
}

// Middleware injects anonymous per-device identity and per-request session ID.
func Middleware(isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID, err := getOrCreateDeviceID(w, r, isDev)
			if err != nil {
				http.Error(w, `{"error":"failed to establish device identity"}`, http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), deviceIDKey, deviceID)
			ctx = context.WithValue(ctx, sessionIDKey, sessionIDFromRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IPFromRequest returns a normalized remote IP for optional request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
