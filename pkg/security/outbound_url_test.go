package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateOutboundURLRejectsZonedIPv6ByDefault(t *testing.T) {
	err := ValidateOutboundURL("https://[fe80::1%25eth0]/", OutboundURLOptions{})
	require.Error(t, err)
}

func TestValidateOutboundURLAllowsZonedIPv6WhenLocalNetworksAllowed(t *testing.T) {
	err := ValidateOutboundURL("https://[fe80::1%25eth0]/", OutboundURLOptions{
		AllowLocalNetworks: true,
	})
	require.NoError(t, err)
}

func TestValidateOutboundURLSchemesAndHosts(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		opts    OutboundURLOptions
		wantErr bool
	}{
		{name: "https public", url: "https://openrouter.ai/api/v1"},
		{name: "http rejected by default", url: "http://wttr.in", wantErr: true},
		{name: "localhost rejected by default", url: "https://localhost:8000", wantErr: true},
		{name: "loopback rejected by default", url: "https://127.0.0.1:8000", wantErr: true},
		{name: "local service", url: "http://localhost:8000", opts: LocalServiceOptions},
		{name: "unspecified address", url: "http://0.0.0.0:8000", opts: LocalServiceOptions, wantErr: true},
		{name: "ftp scheme", url: "ftp://example.com", opts: LocalServiceOptions, wantErr: true},
		{name: "missing host", url: "http:///chat", opts: LocalServiceOptions, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutboundURL(tt.url, tt.opts)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestResolveEndpoint(t *testing.T) {
	u, err := ResolveEndpoint("http://localhost:8000", "/chat", LocalServiceOptions)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000/chat", u)

	u, err = ResolveEndpoint("http://localhost:8000/api/", "chat", LocalServiceOptions)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000/api/chat", u)

	_, err = ResolveEndpoint("http://localhost:8000/?x=1", "/chat", LocalServiceOptions)
	require.Error(t, err)

	_, err = ResolveEndpoint("http://localhost:8000", "/chat", OutboundURLOptions{})
	require.Error(t, err)
}
