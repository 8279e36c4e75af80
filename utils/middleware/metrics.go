package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
)

const metricsBufferSize = 1024

// MetricsRecorder persists one APIMetric row per request through a single
// background writer. Samples are buffered so responses are never delayed by
// metrics persistence; when the buffer is full the sample is dropped rather
// than blocking the request.
type MetricsRecorder struct {
	db     *gorm.DB
	buffer chan model.APIMetric
	done   chan struct{}
}

// NewMetricsRecorder creates a recorder and starts its writer
func NewMetricsRecorder(db *gorm.DB) *MetricsRecorder {
	r := &MetricsRecorder{
		db:     db,
		buffer: make(chan model.APIMetric, metricsBufferSize),
		done:   make(chan struct{}),
	}
	go r.writeLoop()
	return r
}

func (r *MetricsRecorder) writeLoop() {
	defer close(r.done)
	for metric := range r.buffer {
		if err := r.db.Create(&metric).Error; err != nil {
			log.Printf("Metrics: failed to persist sample: %v", err)
		}
	}
}

// record enqueues a sample without ever blocking the request path
func (r *MetricsRecorder) record(metric model.APIMetric) {
	select {
	case r.buffer <- metric:
	default:
		// writer is behind; drop the sample
	}
}

// Close drains the buffer and stops the writer. Call on shutdown after the
// server has stopped accepting requests.
func (r *MetricsRecorder) Close() {
	close(r.buffer)
	<-r.done
}

// Handler returns the middleware that times each request and records it
func (r *MetricsRecorder) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status, errMsg := statusAndError(c.Response().StatusCode(), err)

		metric := model.APIMetric{
			Endpoint:   c.Route().Path,
			Method:     c.Method(),
			StatusCode: status,
			DurationMS: time.Since(start).Milliseconds(),
			Error:      errMsg,
		}
		if userID, ok := GetUserID(c); ok {
			metric.UserID = &userID
		}

		r.record(metric)
		return err
	}
}

// statusAndError derives the recorded status code and error message from the
// handler chain outcome. Fiber errors keep their own status code.
func statusAndError(responseStatus int, err error) (int, string) {
	if err == nil {
		return responseStatus, ""
	}
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code, fe.Message
	}
	return fiber.StatusInternalServerError, err.Error()
}
