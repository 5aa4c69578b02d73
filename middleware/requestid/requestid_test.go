package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, incoming string) (header, inContext string) {
	t.Helper()
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inContext = FromContext(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		r.Header.Set(Header, incoming)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w.Header().Get(Header), inContext
}

func TestMiddleware_ReusesValidID(t *testing.T) {
	header, ctxID := run(t, "client-abc_123")
	assert.Equal(t, "client-abc_123", header)
	assert.Equal(t, header, ctxID)
}

func TestMiddleware_ReplacesInvalidID(t *testing.T) {
	for _, bad := range []string{"", "has space", "<script>", strings.Repeat("a", 129)} {
		header, ctxID := run(t, bad)
		_, err := uuid.Parse(header)
		require.NoError(t, err, "incoming %q", bad)
		assert.Equal(t, header, ctxID)
	}
}

func TestLogAttr(t *testing.T) {
	_, ok := LogAttr(context.Background())
	assert.False(t, ok)

	attr, ok := LogAttr(WithContext(context.Background(), "r1"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "r1", attr.Value.String())
}
