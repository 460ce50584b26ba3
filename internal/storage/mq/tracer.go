package mq

import (
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var (
	tracer  = otel.Tracer("catalog-gateway/storage/mq")
	kTracer = kotel.NewTracer()
)
