// Package metrics defines the Prometheus collectors of the registry API.
// HTTP request metrics come from echoprometheus in the router; the
// collectors here cover domain outcomes.
package metrics

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/student-registry/registry-api/internal/core/ports"
)

const namespace = "registry"

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled", "invalid_input" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// UsersRegisteredTotal counts successfully registered authorized users.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of authorized users registered.",
	},
)

// StudentsRegisteredTotal counts student registrations.
// Label:
//   - result: "success", "invalid_input", "conflict" or "error"
var StudentsRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "students_registered_total",
		Help:      "Total number of student registrations, by result.",
	},
	[]string{"result"},
)

// PhotoUploadDuration measures calls to the photo host.
// Label:
//   - result: "success" or "error"
var PhotoUploadDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "photo_upload_duration_seconds",
		Help:      "Duration of photo uploads to the photo host.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

type instrumentedPhotoHost struct {
	next ports.PhotoHost
}

// InstrumentPhotoHost records PhotoUploadDuration around every upload.
func InstrumentPhotoHost(next ports.PhotoHost) ports.PhotoHost {
	return &instrumentedPhotoHost{next: next}
}

func (h *instrumentedPhotoHost) UploadImage(ctx context.Context, key string, image io.Reader) (string, error) {
	start := time.Now()
	url, err := h.next.UploadImage(ctx, key, image)
	result := "success"
	if err != nil {
		result = "error"
	}
	PhotoUploadDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return url, err
}
