package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// MeteredAPI forwards every report to inner and additionally records counts
// as an otel histogram named "<meter>.count" with the report id as attribute.
type MeteredAPI struct {
	inner API

	once      sync.Once
	meterName string
	histogram otelmetric.Int64Histogram
}

func NewMeteredAPI(meterName string, inner API) *MeteredAPI {
	return &MeteredAPI{inner: inner, meterName: meterName}
}

func (m *MeteredAPI) ReportBroken(id string, params ...any) {
	m.inner.ReportBroken(id, params...)
}

func (m *MeteredAPI) ReportWarning(id string, params ...any) {
	m.inner.ReportWarning(id, params...)
}

func (m *MeteredAPI) ReportDebug(msg string, params ...any) {
	m.inner.ReportDebug(msg, params...)
}

func (m *MeteredAPI) ReportCount(id string, count int64) {
	m.inner.ReportCount(id, count)

	m.once.Do(func() {
		histogram, err := otel.Meter(m.meterName).Int64Histogram(m.meterName + ".count")
		if err != nil {
			m.inner.ReportWarning("telemetry.metrics", err)
			return
		}
		m.histogram = histogram
	})
	if m.histogram == nil {
		return
	}
	m.histogram.Record(
		context.Background(),
		count,
		otelmetric.WithAttributes(attribute.String("id", id)),
	)
}
