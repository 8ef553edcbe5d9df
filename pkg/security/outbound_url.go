package security

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

// OutboundURLOptions configures outbound request URL validation.
type OutboundURLOptions struct {
	// AllowHTTP permits plain HTTP URLs. HTTPS is always allowed.
	AllowHTTP bool
	// AllowLocalNetworks permits loopback/private/link-local IP targets and localhost hostnames.
	AllowLocalNetworks bool
}

// LocalServiceOptions accepts the plain-HTTP localhost endpoints the chat backend
// usually runs on.
var LocalServiceOptions = OutboundURLOptions{
	AllowHTTP:          true,
	AllowLocalNetworks: true,
}

// ValidateOutboundURL validates that a URL is safe for outbound requests.
// It rejects unsafe schemes and local-network targets unless explicitly allowed.
func ValidateOutboundURL(rawURL string, opts OutboundURLOptions) error {
	_, err := parseOutboundURL(rawURL, opts)
	return err
}

// ResolveEndpoint validates baseURL and returns it with path appended, keeping any
// path prefix of the base (e.g. "http://host/api" + "/chat" -> "http://host/api/chat").
func ResolveEndpoint(baseURL string, path string, opts OutboundURLOptions) (string, error) {
	parsed, err := parseOutboundURL(baseURL, opts)
	if err != nil {
		return "", err
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", fmt.Errorf("base URL %q must not carry a query or fragment", baseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/" + strings.TrimLeft(path, "/")
	parsed.RawPath = ""
	return parsed.String(), nil
}

func parseOutboundURL(rawURL string, opts OutboundURLOptions) (*url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		if !opts.AllowHTTP {
			return nil, fmt.Errorf("http scheme is not allowed")
		}
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return nil, fmt.Errorf("URL host is required")
	}

	if !opts.AllowLocalNetworks {
		if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
			return nil, fmt.Errorf("local hostname %q is not allowed", host)
		}
	}

	// IP literals are checked without DNS lookups.
	if addr, err := netip.ParseAddr(host); err == nil {
		if addr.Zone() != "" && !opts.AllowLocalNetworks {
			return nil, fmt.Errorf("zoned IP address %q is not allowed", host)
		}
		addr = addr.Unmap()

		if addr.IsUnspecified() || addr.IsMulticast() {
			return nil, fmt.Errorf("disallowed IP address %q", host)
		}

		if !opts.AllowLocalNetworks {
			if addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
				return nil, fmt.Errorf("local network IP %q is not allowed", host)
			}
		}
	}

	return parsed, nil
}
