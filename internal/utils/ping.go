package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// IdentityProviderTimeout bounds the reachability check of the login provider.
const IdentityProviderTimeout = 1500 * time.Millisecond

// PingService dials the host of serviceURL over TCP.
// The port defaults to the scheme's well known port.
func PingService(ctx context.Context, serviceURL string, timeout time.Duration) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Hostname() == "" {
		return fmt.Errorf("invalid URL %q: missing host", serviceURL)
	}

	port := parsedURL.Port()
	if port == "" {
		switch parsedURL.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	address := net.JoinHostPort(parsedURL.Hostname(), port)

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}

// PingIdentityProvider checks that the OAuth authorization endpoint accepts connections.
func PingIdentityProvider(ctx context.Context, authURL string) error {
	return PingService(ctx, authURL, IdentityProviderTimeout)
}
