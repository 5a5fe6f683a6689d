package ipinfo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newJSONServer(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestResolverPrimarySuccess(t *testing.T) {
	var secondaryCalls atomic.Int32
	primary := newJSONServer(t, http.StatusOK, `{
		"ip": "73.92.11.4",
		"hostname": "c-73-92-11-4.hsd1.co.comcast.net",
		"city": "Denver",
		"region": "Colorado",
		"country": "US",
		"org": "AS7922 Comcast Cable Communications, LLC",
		"timezone": "America/Denver"
	}`, nil)
	secondary := newJSONServer(t, http.StatusOK, `{}`, &secondaryCalls)

	r := NewResolver(Options{PrimaryURL: primary.URL, SecondaryURL: secondary.URL}, testLogger())

	identity, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if identity.PublicIP != "73.92.11.4" {
		t.Errorf("PublicIP = %q, want 73.92.11.4", identity.PublicIP)
	}
	if identity.ASN != "AS7922" {
		t.Errorf("ASN = %q, want AS7922", identity.ASN)
	}
	if identity.ISPName != "Comcast Cable Communications, LLC" {
		t.Errorf("ISPName = %q", identity.ISPName)
	}
	if secondaryCalls.Load() != 0 {
		t.Errorf("secondary provider was queried %d times, want 0", secondaryCalls.Load())
	}

	// The same payload resolves to the same identity on a second pass.
	again, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() second pass error = %v", err)
	}
	if again != identity {
		t.Errorf("Resolve() second pass = %+v, want %+v", again, identity)
	}
}

func TestResolverFallsBackToSecondary(t *testing.T) {
	primary := newJSONServer(t, http.StatusInternalServerError, `{}`, nil)
	secondary := newJSONServer(t, http.StatusOK, `{
		"status": "success",
		"query": "5.6.7.8",
		"isp": "Verizon Business",
		"org": "MCI Communications",
		"as": "AS701 Verizon Business"
	}`, nil)

	r := NewResolver(Options{PrimaryURL: primary.URL, SecondaryURL: secondary.URL}, testLogger())

	identity, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if identity.PublicIP != "5.6.7.8" {
		t.Errorf("PublicIP = %q, want 5.6.7.8", identity.PublicIP)
	}
	if identity.ASN != "AS701" {
		t.Errorf("ASN = %q, want AS701", identity.ASN)
	}
	if identity.ISPName != "Verizon Business" {
		t.Errorf("ISPName = %q, want Verizon Business", identity.ISPName)
	}
}

func TestResolverPartialIdentity(t *testing.T) {
	primary := newJSONServer(t, http.StatusOK, `{"ip": "9.9.9.9"}`, nil)
	secondary := newJSONServer(t, http.StatusOK, `{}`, nil)

	r := NewResolver(Options{PrimaryURL: primary.URL, SecondaryURL: secondary.URL}, testLogger())

	identity, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if identity.PublicIP != "9.9.9.9" {
		t.Errorf("PublicIP = %q, want 9.9.9.9", identity.PublicIP)
	}
	if identity.ASN != "" || identity.ISPName != "" {
		t.Errorf("partial identity = %+v, want empty ASN and ISP", identity)
	}
}

func TestResolverAllProvidersFail(t *testing.T) {
	primary := newJSONServer(t, http.StatusServiceUnavailable, `{}`, nil)
	secondary := newJSONServer(t, http.StatusOK, `{"status": "fail", "message": "private range"}`, nil)

	r := NewResolver(Options{PrimaryURL: primary.URL, SecondaryURL: secondary.URL}, testLogger())

	_, err := r.Resolve(context.Background())
	if !errors.Is(err, ErrAllProvidersUnavailable) {
		t.Fatalf("Resolve() error = %v, want ErrAllProvidersUnavailable", err)
	}
}

func TestResolverSecondaryWithoutIP(t *testing.T) {
	primary := newJSONServer(t, http.StatusBadGateway, `{}`, nil)
	secondary := newJSONServer(t, http.StatusOK, `{"status": "success"}`, nil)

	r := NewResolver(Options{PrimaryURL: primary.URL, SecondaryURL: secondary.URL}, testLogger())

	if _, err := r.Resolve(context.Background()); !errors.Is(err, ErrAllProvidersUnavailable) {
		t.Errorf("Resolve() error = %v, want ErrAllProvidersUnavailable", err)
	}
}

func TestResolverUnreachableProviders(t *testing.T) {
	// Closed servers refuse connections outright.
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	primary.Close()
	secondary.Close()

	r := NewResolver(Options{
		PrimaryURL:   primary.URL,
		SecondaryURL: secondary.URL,
		Timeout:      2 * time.Second,
	}, testLogger())

	if _, err := r.Resolve(context.Background()); !errors.Is(err, ErrAllProvidersUnavailable) {
		t.Errorf("Resolve() error = %v, want ErrAllProvidersUnavailable", err)
	}
}

func TestParseOrg(t *testing.T) {
	testCases := []struct {
		name    string
		org     string
		wantASN string
		wantISP string
	}{
		{
			name:    "asn and name",
			org:     "AS15169 Google LLC",
			wantASN: "AS15169",
			wantISP: "Google LLC",
		},
		{
			name:    "asn and multi word name",
			org:     "AS7922 Comcast Cable Communications, LLC",
			wantASN: "AS7922",
			wantISP: "Comcast Cable Communications, LLC",
		},
		{
			name:    "name only",
			org:     "Google LLC",
			wantASN: "",
			wantISP: "Google LLC",
		},
		{
			name:    "as prefix without digits",
			org:     "AS Telecom",
			wantASN: "",
			wantISP: "AS Telecom",
		},
		{
			name:    "bare asn",
			org:     "AS15169",
			wantASN: "AS15169",
			wantISP: "",
		},
		{
			name:    "empty",
			org:     "",
			wantASN: "",
			wantISP: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			asn, isp := ParseOrg(tc.org)
			if asn != tc.wantASN || isp != tc.wantISP {
				t.Errorf("ParseOrg(%q) = (%q, %q), want (%q, %q)",
					tc.org, asn, isp, tc.wantASN, tc.wantISP)
			}
		})
	}
}

func TestResolverDefaults(t *testing.T) {
	r := NewResolver(Options{}, testLogger())
	if len(r.providers) != 2 {
		t.Fatalf("provider chain has %d entries, want 2", len(r.providers))
	}
	if r.providers[0].Name() != "ipinfo.io" || r.providers[1].Name() != "ip-api.com" {
		t.Errorf("provider order = %s, %s", r.providers[0].Name(), r.providers[1].Name())
	}
}

func TestResolverWithSTUNFallback(t *testing.T) {
	r := NewResolver(Options{STUNServer: "stun.example.org:3478"}, testLogger())
	if len(r.providers) != 3 {
		t.Fatalf("provider chain has %d entries, want 3", len(r.providers))
	}
	if r.providers[2].Name() != "stun" {
		t.Errorf("last provider = %s, want stun", r.providers[2].Name())
	}
}
