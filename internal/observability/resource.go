package observability

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"

	"github.com/campusconnect/campus-connect-api/internal/config"
)

const serviceNamespace = "campus-connect"

var instanceID = sync.OnceValue(func() string { return uuid.NewString() })

// serviceResource describes this process to every OTLP signal so traces,
// metrics and logs from one replica correlate.
func serviceResource(ctx context.Context, cfg *config.Config, signal string) (*sdkresource.Resource, error) {
	res, err := sdkresource.New(ctx,
		sdkresource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("service.namespace", serviceNamespace),
			attribute.String("service.instance.id", instanceID()),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s resource: %w", signal, err)
	}
	return res, nil
}
