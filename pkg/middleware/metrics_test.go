package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// serveWithChi mounts handler on a chi route so RouteContext is populated.
func serveWithChi(mw func(http.Handler) http.Handler, pattern string, handler http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get(pattern, handler)
	return r
}

func TestHTTPMetrics_LabelsByRoutePatternAndCode(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry())
	handler := serveWithChi(m.Handler, "/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	for _, id := range []string{"1", "2", "18", "404"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/"+id, nil))
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/products/{id}", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/products/{id}", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestHTTPMetrics_UnmatchedRoute(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry())
	handler := serveWithChi(m.Handler, "/cart", func(http.ResponseWriter, *http.Request) {})

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestHTTPMetrics_InFlightGauge(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry())
	var seen float64
	handler := serveWithChi(m.Handler, "/catalogue", func(http.ResponseWriter, *http.Request) {
		seen = testutil.ToFloat64(m.inFlight)
	})

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/catalogue", nil))

	assert.Equal(t, float64(1), seen)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.inFlight))
}

func TestNewHTTPMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewHTTPMetrics(reg)
	b := NewHTTPMetrics(reg)
	assert.Same(t, a.requests, b.requests)
	assert.Same(t, a.inFlight, b.inFlight)
}

// --- statusRecorder ---

type flushHijackWriter struct {
	http.ResponseWriter
	flushed  bool
	hijacked bool
}

func (m *flushHijackWriter) Flush() { m.flushed = true }

func (m *flushHijackWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	m.hijacked = true
	return nil, nil, nil
}

type minimalResponseWriter struct {
	header http.Header
}

func (m *minimalResponseWriter) Header() http.Header {
	if m.header == nil {
		m.header = make(http.Header)
	}
	return m.header
}

func (m *minimalResponseWriter) Write(b []byte) (int, error) { return len(b), nil }

func (m *minimalResponseWriter) WriteHeader(int) {}

func TestStatusRecorder_Delegates(t *testing.T) {
	under := &flushHijackWriter{ResponseWriter: httptest.NewRecorder()}
	rw := newStatusRecorder(under)

	rw.Flush()
	_, _, err := rw.Hijack()

	assert.NoError(t, err)
	assert.True(t, under.flushed)
	assert.True(t, under.hijacked)
	assert.Same(t, under, rw.Unwrap())
}

func TestStatusRecorder_HijackUnsupported(t *testing.T) {
	rw := newStatusRecorder(&minimalResponseWriter{})

	rw.Flush()
	_, _, err := rw.Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}

func TestStatusRecorder_FirstStatusWins(t *testing.T) {
	rw := newStatusRecorder(&minimalResponseWriter{})
	_, _ = rw.Write([]byte("abc"))
	rw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusOK, rw.statusCode)
	assert.Equal(t, 3, rw.bytes)
}

func TestStatusRecorder_ReusesExisting(t *testing.T) {
	rw := newStatusRecorder(httptest.NewRecorder())
	assert.Same(t, rw, newStatusRecorder(rw))
}
