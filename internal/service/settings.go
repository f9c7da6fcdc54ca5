package service

import (
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/mentalist/counseling_backend/internal/service")

// Settings are the tunables shared by the services.
type Settings struct {
	Location      *time.Location
	HorizonWeeks  int
	NotifyTimeout time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.HorizonWeeks <= 0 {
		s.HorizonWeeks = 4
	}
	if s.NotifyTimeout <= 0 {
		s.NotifyTimeout = 3 * time.Second
	}
	return s
}
