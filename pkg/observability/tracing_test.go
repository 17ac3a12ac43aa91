package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospitality-ops/pkg/config"
	"github.com/jhoicas/hospitality-ops/pkg/observability"
)

func TestSetupTracing_SinEndpointEsNoop(t *testing.T) {
	shutdown, err := observability.SetupTracing(context.Background(), config.TracingConfig{}, "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTracing_ConEndpointRegistraProveedor(t *testing.T) {
	cfg := config.TracingConfig{Endpoint: "localhost:4318", ServiceName: "hospitality-ops", Insecure: true}
	shutdown, err := observability.SetupTracing(context.Background(), cfg, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
