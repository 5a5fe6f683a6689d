// Package ipinfo resolves the public network identity of the host: its
// public IP, the autonomous system it belongs to, and the ISP name. Several
// providers are queried in a fixed order and the first usable answer wins,
// so a single provider outage does not blind the probe.
package ipinfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ChiefGyk3D/netpulse/pkg/models"
)

// ErrAllProvidersUnavailable is returned when every provider in the chain
// failed. The joined per-provider errors are attached for diagnostics.
var ErrAllProvidersUnavailable = errors.New("all identity providers unavailable")

const (
	DefaultPrimaryURL   = "https://ipinfo.io/json"
	DefaultSecondaryURL = "http://ip-api.com/json"
	DefaultTimeout      = 10 * time.Second
)

// Provider resolves the current identity from one upstream source.
type Provider interface {
	Name() string
	Resolve(ctx context.Context) (models.NetworkIdentity, error)
}

// Options configures the provider chain.
type Options struct {
	PrimaryURL   string
	SecondaryURL string
	STUNServer   string        // optional IP-only fallback, e.g. "stun.l.google.com:19302"
	Timeout      time.Duration // per-provider budget
}

// Resolver queries a fixed, ordered provider chain.
type Resolver struct {
	providers []Provider
	logger    *slog.Logger
}

func NewResolver(opts Options, logger *slog.Logger) *Resolver {
	if opts.PrimaryURL == "" {
		opts.PrimaryURL = DefaultPrimaryURL
	}
	if opts.SecondaryURL == "" {
		opts.SecondaryURL = DefaultSecondaryURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	client := &http.Client{Timeout: opts.Timeout}
	providers := []Provider{
		&ipinfoProvider{url: opts.PrimaryURL, client: client},
		&ipapiProvider{url: opts.SecondaryURL, client: client},
	}
	if opts.STUNServer != "" {
		providers = append(providers, &stunProvider{server: opts.STUNServer, timeout: opts.Timeout})
	}
	return &Resolver{providers: providers, logger: logger}
}

// Resolve walks the chain in order and returns the first answer. Partial
// identities are acceptable: a provider that only knows the IP still beats
// no answer at all.
func (r *Resolver) Resolve(ctx context.Context) (models.NetworkIdentity, error) {
	var errs []error
	for _, p := range r.providers {
		identity, err := p.Resolve(ctx)
		if err != nil {
			r.logger.Warn("identity provider failed", "provider", p.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		r.logger.Debug("resolved network identity",
			"provider", p.Name(),
			"ip", identity.PublicIP,
			"asn", identity.ASN,
			"isp", identity.ISPName)
		return identity, nil
	}
	return models.NetworkIdentity{}, fmt.Errorf("%w: %w", ErrAllProvidersUnavailable, errors.Join(errs...))
}

// ipinfoProvider queries ipinfo.io, which folds the AS number into the org
// field as "AS15169 Google LLC".
type ipinfoProvider struct {
	url    string
	client *http.Client
}

type ipinfoResponse struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Org      string `json:"org"`
	Timezone string `json:"timezone"`
}

func (p *ipinfoProvider) Name() string { return "ipinfo.io" }

func (p *ipinfoProvider) Resolve(ctx context.Context) (models.NetworkIdentity, error) {
	var payload ipinfoResponse
	if err := getJSON(ctx, p.client, p.url, &payload); err != nil {
		return models.NetworkIdentity{}, err
	}
	if payload.IP == "" {
		return models.NetworkIdentity{}, errors.New("response carries no ip")
	}

	asn, isp := ParseOrg(payload.Org)
	return models.NetworkIdentity{
		PublicIP: payload.IP,
		ASN:      asn,
		ISPName:  isp,
	}, nil
}

// ipapiProvider queries ip-api.com, which reports the AS number in its own
// "as" field and the ISP name directly.
type ipapiProvider struct {
	url    string
	client *http.Client
}

type ipapiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Query   string `json:"query"`
	ISP     string `json:"isp"`
	Org     string `json:"org"`
	AS      string `json:"as"`
}

func (p *ipapiProvider) Name() string { return "ip-api.com" }

func (p *ipapiProvider) Resolve(ctx context.Context) (models.NetworkIdentity, error) {
	var payload ipapiResponse
	if err := getJSON(ctx, p.client, p.url, &payload); err != nil {
		return models.NetworkIdentity{}, err
	}
	if payload.Status == "fail" {
		return models.NetworkIdentity{}, fmt.Errorf("provider rejected query: %s", payload.Message)
	}
	if payload.Query == "" {
		return models.NetworkIdentity{}, errors.New("response carries no ip")
	}

	// The "as" field reads "AS7922 Comcast Cable Communications, LLC".
	var asn string
	if fields := strings.Fields(payload.AS); len(fields) > 0 && isASN(fields[0]) {
		asn = fields[0]
	}
	isp := payload.ISP
	if isp == "" {
		isp = payload.Org
	}
	return models.NetworkIdentity{
		PublicIP: payload.Query,
		ASN:      asn,
		ISPName:  isp,
	}, nil
}

// ParseOrg splits an "AS15169 Google LLC" org string into the AS number and
// the organization name. Strings without a recognizable leading AS number
// keep the whole value as the name and leave the ASN empty.
func ParseOrg(org string) (asn, isp string) {
	org = strings.TrimSpace(org)
	if org == "" {
		return "", ""
	}
	parts := strings.SplitN(org, " ", 2)
	if !isASN(parts[0]) {
		return "", org
	}
	if len(parts) == 2 {
		return parts[0], strings.TrimSpace(parts[1])
	}
	return parts[0], ""
}

// isASN reports whether s looks like "AS" followed by digits only.
func isASN(s string) bool {
	if len(s) <= 2 || !strings.HasPrefix(s, "AS") {
		return false
	}
	for _, r := range s[2:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func getJSON(ctx context.Context, client *http.Client, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
