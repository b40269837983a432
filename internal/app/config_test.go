package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, ":9090", cfg.MetricsAddr)
	require.Equal(t, "logs", cfg.LogDir)
	require.True(t, cfg.JobsEnabled)
	require.Equal(t, 1*time.Minute, cfg.HeartbeatInterval)
	require.Equal(t, 1*time.Second, cfg.OutboxPollInterval)
	require.Empty(t, cfg.PostgresDSN)
	require.Empty(t, cfg.KafkaBrokers)
}

func TestAPIBaseURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "explicit base url wins",
			cfg:  Config{APIBaseURL: "http://crm.internal:8080", HTTPAddr: ":8080"},
			want: "http://crm.internal:8080",
		},
		{
			name: "port only addr maps to localhost",
			cfg:  Config{HTTPAddr: ":8080"},
			want: "http://localhost:8080",
		},
		{
			name: "host and port addr",
			cfg:  Config{HTTPAddr: "10.0.0.5:8081"},
			want: "http://10.0.0.5:8081",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, apiBaseURL(tc.cfg))
		})
	}
}
