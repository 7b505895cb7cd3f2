package metrics

import (
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UploadsTotal counts accepted photo uploads.
	UploadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gallery_uploads_total",
		Help: "Number of photos accepted by the ingestion pipeline.",
	})
	// UploadBytesTotal counts bytes written for accepted uploads.
	UploadBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gallery_upload_bytes_total",
		Help: "Bytes stored for accepted photo uploads.",
	})
	// DeletesTotal counts completed photo deletions.
	DeletesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gallery_deletes_total",
		Help: "Number of photo records deleted.",
	})

	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	registerOnce sync.Once
)

// InitMetrics registers the collectors with the default registry. Safe to
// call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(UploadsTotal, UploadBytesTotal, DeletesTotal, requestsTotal)
	})
}

// ObserveUpload records one accepted upload of the given size.
func ObserveUpload(sizeBytes int64) {
	UploadsTotal.Inc()
	UploadBytesTotal.Add(float64(sizeBytes))
}

// Middleware counts every handled request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}
