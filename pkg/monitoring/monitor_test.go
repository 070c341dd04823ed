package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/api/modules/:id/progress", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := RequestCounter.WithLabelValues(http.MethodGet, "/api/modules/:id/progress", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/modules/"+id+"/progress", nil))
	}
	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestDomainCounters(t *testing.T) {
	c := TestSubmissions.WithLabelValues("module", "true")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
