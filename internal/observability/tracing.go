package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/webclarity/clarity-backend/internal/logger"
)

// SetupTracing installs a trace provider with the stdout exporter and
// returns its shutdown hook.
func SetupTracing(log *logger.Logger) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	log.Info("Tracing initialized")
	return provider.Shutdown, nil
}
