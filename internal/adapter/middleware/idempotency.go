package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"

	// in-progress marker lifetime; a crashed handler frees the key after this
	provisionalLockTTL = 60 * time.Second
	maxClockSkew       = 10 * time.Minute
	storeTimeout       = 2 * time.Second
)

// replayEntry is what Redis keeps per request key: a marker while the handler
// runs, then the captured response.
type replayEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e replayEntry) replayable() bool { return !e.InProgress && e.Code != 0 && len(e.Body) > 0 }

// teeWriter copies everything the handler writes so it can be stored.
type teeWriter struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

type requestMeta struct {
	id string
	at time.Time
}

// readMeta validates the idempotency headers. The returned message is safe to
// send back to the caller.
func readMeta(h http.Header, now time.Time) (requestMeta, string) {
	id := strings.TrimSpace(h.Get(HeaderRequestID))
	switch {
	case id == "":
		return requestMeta{}, "missing " + HeaderRequestID
	case !validReqID(id):
		return requestMeta{}, "invalid " + HeaderRequestID + " format"
	}
	at, err := parseAxRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return requestMeta{}, err.Error()
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return requestMeta{}, HeaderRequestAt + " too skewed"
	}
	return requestMeta{id: id, at: at}, ""
}

// IdempotencyMiddleware replays the stored response of a mutating request
// keyed by method, route, caller and Ax-Request-Id. It must run after Caller.
// Reusing a request id with a different body is a conflict, as is a retry
// that arrives while the first attempt is still running.
func IdempotencyMiddleware(rdb redis.Cmdable, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method == http.MethodGet || req.Method == http.MethodHead || req.Method == http.MethodOptions {
				return next(c)
			}

			meta, msg := readMeta(req.Header, nowUTC())
			if msg != "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
			}
			callerID := ActorFrom(c).Identification
			if callerID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "caller identity required"})
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			hash := bodyHash(body)

			key := buildKey(req.Method, c.Path(), callerID, meta.id)
			entry := replayEntry{
				InProgress:  true,
				BodySHA256:  hash,
				RequestID:   meta.id,
				RequestAtMS: meta.at.UnixMilli(),
				CreatedAt:   nowUTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			claimed, err := provisionalSet(ctx, rdb, key, entry)
			if err != nil {
				log.Error("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !claimed {
				cur, err := loadEntry(ctx, rdb, key)
				if err != nil {
					log.Warn("idempotency entry unreadable", zap.String("key", key), zap.Error(err))
				}
				switch {
				case cur.BodySHA256 != "" && cur.BodySHA256 != hash:
					return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
				case cur.replayable():
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
			}

			tee := &teeWriter{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = tee
			if err := next(c); err != nil {
				c.Error(err)
			}

			entry.InProgress = false
			entry.Code = tee.code
			entry.Body = tee.buf.Bytes()
			entry.CreatedAt = nowUTC()
			if err := saveFinal(context.WithoutCancel(req.Context()), rdb, key, entry, ttl); err != nil {
				log.Error("idempotency entry not saved", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
