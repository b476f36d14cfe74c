package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"course-dashboard/monitoring"

	"github.com/go-redis/redismock/v9"
	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRateLimiter(limit int) (*RateLimiter, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, monitoring.NewMonitor(), limit)
	limiter.identify = func(e *core.RequestEvent) string {
		return "10.0.0.1"
	}
	return limiter, mock
}

func newEvent(userAgent string) (*core.RequestEvent, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	e := &core.RequestEvent{}
	e.Request = req
	e.Response = rec
	return e, rec
}

const testKey = "ratelimit:dashboard:10.0.0.1"

func expectHit(mock redismock.ClientMock, count int64, expireSet bool) {
	mock.ExpectTxPipeline()
	mock.ExpectIncr(testKey).SetVal(count)
	mock.ExpectExpireNX(testKey, time.Minute).SetVal(expireSet)
	mock.ExpectTxPipelineExec()
}

func TestRateLimiter_FirstRequestSetsWindow(t *testing.T) {
	limiter, mock := setupTestRateLimiter(2)
	defer mock.ClearExpected()

	expectHit(mock, 1, true)

	e, rec := newEvent("")
	err := limiter.DashboardRateLimit(e)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_EveryHitEnsuresExpiry(t *testing.T) {
	limiter, mock := setupTestRateLimiter(5)
	defer mock.ClearExpected()

	// The window already exists for the first hit; a key left without a TTL
	// gets one on the next hit.
	expectHit(mock, 2, false)
	expectHit(mock, 3, true)

	for i := 0; i < 2; i++ {
		e, rec := newEvent("")
		require.NoError(t, limiter.DashboardRateLimit(e))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_WithinLimit(t *testing.T) {
	limiter, mock := setupTestRateLimiter(2)
	defer mock.ClearExpected()

	expectHit(mock, 2, false)

	e, rec := newEvent("")
	require.NoError(t, limiter.DashboardRateLimit(e))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_Exceeded(t *testing.T) {
	limiter, mock := setupTestRateLimiter(2)
	defer mock.ClearExpected()

	expectHit(mock, 3, false)

	e, rec := newEvent("")
	require.NoError(t, limiter.DashboardRateLimit(e))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_RedisErrorFailsOpen(t *testing.T) {
	limiter, mock := setupTestRateLimiter(2)
	defer mock.ClearExpected()

	// No expectations: the MULTI itself fails.
	e, rec := newEvent("")
	require.NoError(t, limiter.DashboardRateLimit(e))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter, mock := setupTestRateLimiter(0)

	e, rec := newEvent("")
	require.NoError(t, limiter.DashboardRateLimit(e))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAntiBot(t *testing.T) {
	limiter, _ := setupTestRateLimiter(1)

	tests := []struct {
		ua   string
		want int
	}{
		{"Mozilla/5.0 (X11; Linux x86_64)", http.StatusOK},
		{"Googlebot/2.1", http.StatusForbidden},
		{"SomeCrawler 1.0", http.StatusForbidden},
		{"", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.ua, func(t *testing.T) {
			e, rec := newEvent(tt.ua)
			require.NoError(t, limiter.AntiBot(e))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
