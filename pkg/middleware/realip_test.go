package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/audit"
)

func proxiedRequest(forwardedFor string) *http.Request {
	req := requestFrom("10.0.0.254:443")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	return req
}

func TestClientAddress_TrustedProxySeparatesCallers(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, nil, zap.NewNop())
	handler := ClientAddress(true)(RequestLogger(zap.NewNop())(rl.Handler(okHandler())))

	for _, ip := range []string{"203.0.113.7", "203.0.113.8"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, proxiedRequest(ip))
		assert.Equal(t, http.StatusOK, rec.Code, "caller %s has its own bucket", ip)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, proxiedRequest("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestClientAddress_UntrustedIgnoresForwardedHeaders(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, nil, zap.NewNop())
	handler := ClientAddress(false)(RequestLogger(zap.NewNop())(rl.Handler(okHandler())))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, proxiedRequest("203.0.113.7"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, proxiedRequest("203.0.113.8"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "spoofed header must not buy a new bucket")
}

func TestClientAddress_AuditSeesForwardedIP(t *testing.T) {
	var got string
	handler := ClientAddress(true)(RequestLogger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = audit.ClientIP(r.Context())
	})))

	handler.ServeHTTP(httptest.NewRecorder(), proxiedRequest("203.0.113.9, 10.0.0.254"))
	assert.Equal(t, "203.0.113.9", got)
}
