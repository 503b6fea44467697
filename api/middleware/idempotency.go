package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/playerhire-backend/api/responses"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/playerhire-backend/pkg/redis"
)

const (
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
	inFlightTTL            = 2 * time.Minute

	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
)

// idempotentRoutes lists the writes that must carry an Idempotency-Key. A "*"
// segment matches one path segment, so both chi patterns and raw paths match.
var idempotentRoutes = []struct {
	route string
	ttl   time.Duration
}{
	{"/api/orders", defaultIdempotencyTTL},
	{"/api/orders/*/confirm", defaultIdempotencyTTL},
	{"/api/orders/*/reject", defaultIdempotencyTTL},
	{"/api/orders/*/cancel", defaultIdempotencyTTL},
	{"/api/orders/*/complete", defaultIdempotencyTTL},
	{"/api/orders/*/review", defaultIdempotencyTTL},
	{"/api/notifications/*/read", defaultIdempotencyTTL},
	{"/api/notifications/read-all", defaultIdempotencyTTL},
	{"/api/admin/listings/*/ban", defaultIdempotencyTTL},
	{"/api/admin/listings/*/unban", defaultIdempotencyTTL},
	// coin movement keeps its replay record for a week
	{"/api/wallet/topups", criticalIdempotencyTTL},
	{"/api/wallet/withdrawals", criticalIdempotencyTTL},
}

// replayRecord is what redis holds per key. A record without a status marks a
// request that is still running.
type replayRecord struct {
	RequestHash string `json:"requestHash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

func (r replayRecord) inFlight() bool { return r.Status == 0 }

// Idempotency claims the key before running the handler, so a concurrent
// duplicate is refused instead of executed twice. Finished responses below 500
// are replayed for the route TTL; server errors release the key for a retry.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := idempotencyTTL(r)
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, idempotencyHeader+" header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := store.IdempotencyKey(idempotencyScope(r), clientKey)
			hash := requestHash(body)

			claimed, err := claim(r, store, key, hash)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				replayOrRefuse(w, r, store, key, hash, logg)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			if err := store.Del(ctx, key); err != nil {
				logg.Error(ctx, "release idempotency claim", err)
				return
			}
			if capture.statusCode() >= http.StatusInternalServerError {
				return
			}
			record := replayRecord{
				RequestHash: hash,
				Status:      capture.statusCode(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			}
			payload, err := json.Marshal(record)
			if err != nil {
				logg.Error(ctx, "encode idempotency record", err)
				return
			}
			if _, err := store.SetNX(ctx, key, string(payload), ttl); err != nil {
				logg.Error(ctx, "persist idempotency record", err)
			}
		})
	}
}

func claim(r *http.Request, store pkgredis.IdempotencyStore, key, hash string) (bool, error) {
	marker, err := json.Marshal(replayRecord{RequestHash: hash})
	if err != nil {
		return false, err
	}
	return store.SetNX(r.Context(), key, string(marker), inFlightTTL)
}

func replayOrRefuse(w http.ResponseWriter, r *http.Request, store pkgredis.IdempotencyStore, key, hash string, logg *logger.Logger) {
	ctx := r.Context()
	stored, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, redis.Nil) || (err == nil && stored == ""):
		// the holder finished with a 5xx and released the key between our calls
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this idempotency key is being retried, try again"))
		return
	case err != nil:
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read idempotency record"))
		return
	}

	var record replayRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != hash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if record.inFlight() {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this idempotency key is still in progress"))
		return
	}

	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(record.Body)
}

func idempotencyScope(r *http.Request) string {
	return strings.Join([]string{AccountIDFromContext(r.Context()).String(), r.Method, r.URL.Path}, "|")
}

func requestHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// idempotencyTTL resolves the chi pattern when routing has finished and falls
// back to the raw path for group-level middleware.
func idempotencyTTL(r *http.Request) (time.Duration, bool) {
	if r.Method != http.MethodPost {
		return 0, false
	}
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if ttl, ok := routeTTL(r.Method, rc.RoutePattern()); ok {
			return ttl, true
		}
	}
	return routeTTL(r.Method, r.URL.Path)
}

func routeTTL(method, path string) (time.Duration, bool) {
	if method != http.MethodPost || path == "" {
		return 0, false
	}
	for _, candidate := range idempotentRoutes {
		if routeMatches(candidate.route, path) {
			return candidate.ttl, true
		}
	}
	return 0, false
}

func routeMatches(route, path string) bool {
	want := strings.Split(strings.Trim(route, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != "*" && want[i] != got[i] {
			return false
		}
	}
	return true
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
