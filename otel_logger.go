package main

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
)

// OTelSubscriber exports events as structured OTel log records and counts
// them per type. Both legs are optional and config-gated.
type OTelSubscriber struct {
	logger  otellog.Logger
	counter metric.Int64Counter
	cfg     *Config
}

func NewOTelSubscriber(logger otellog.Logger, meter metric.Meter, cfg *Config) *OTelSubscriber {
	s := &OTelSubscriber{logger: logger, cfg: cfg}
	if meter != nil {
		counter, err := meter.Int64Counter("bridge.events",
			metric.WithDescription("multiworld events observed, by type"))
		if err != nil {
			log.Printf("event counter: %v", err)
		} else {
			s.counter = counter
		}
	}
	return s
}

func (s *OTelSubscriber) OnEvent(event Event) {
	if s.counter != nil {
		s.counter.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("event.type", string(event.Type))))
	}

	if s.logger == nil || !s.cfg.exportEventAllowed(event.Type) {
		return
	}

	attrs := []otellog.KeyValue{
		otellog.String("text", event.Text),
	}
	for k, v := range event.Fields {
		attrs = append(attrs, otellog.String(k, v))
	}

	var r otellog.Record
	r.SetTimestamp(time.Now())
	r.SetBody(otellog.StringValue(string(event.Type)))
	r.AddAttributes(attrs...)
	s.logger.Emit(context.Background(), r)
}
