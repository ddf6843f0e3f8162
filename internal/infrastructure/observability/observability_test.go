package observability

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ogonki/streak-api/internal/config"
)

func TestSetupDisabledIsNoop(t *testing.T) {
	cases := []*config.Config{
		{ServiceName: "streak-api"},
		{ServiceName: "streak-api", EnableTracing: true},
		{ServiceName: "streak-api", OTLPEndpoint: "localhost:4318"},
	}
	for _, cfg := range cases {
		shutdown, err := Setup(context.Background(), cfg, zerolog.Nop())
		require.NoError(t, err)
		require.NoError(t, shutdown(context.Background()))
	}
}
