package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ChiefGyk3D/netpulse/pkg/models"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		isp      string
		expected models.ConnectionType
	}{
		{
			name:     "verizon wireless is cellular",
			isp:      "Verizon Wireless",
			expected: models.ConnectionCellular,
		},
		{
			name:     "t-mobile is cellular",
			isp:      "T-Mobile USA, Inc.",
			expected: models.ConnectionCellular,
		},
		{
			name:     "comcast is cable",
			isp:      "Comcast Cable Communications, LLC",
			expected: models.ConnectionCable,
		},
		{
			name:     "spectrum is cable",
			isp:      "Charter Communications (Spectrum)",
			expected: models.ConnectionCable,
		},
		{
			name:     "fios is fiber",
			isp:      "Verizon FiOS",
			expected: models.ConnectionFiber,
		},
		{
			name:     "google fiber",
			isp:      "Google Fiber Inc.",
			expected: models.ConnectionFiber,
		},
		{
			name:     "centurylink is dsl",
			isp:      "CenturyLink Communications",
			expected: models.ConnectionDSL,
		},
		{
			name:     "match is case insensitive",
			isp:      "XFINITY",
			expected: models.ConnectionCable,
		},
		{
			name:     "unmatched name is unknown",
			isp:      "Unknown Telecom XYZ",
			expected: models.ConnectionUnknown,
		},
		{
			name:     "transit provider is unknown",
			isp:      "Hurricane Electric LLC",
			expected: models.ConnectionUnknown,
		},
		{
			name:     "empty name is unknown",
			isp:      "",
			expected: models.ConnectionUnknown,
		},
		{
			name:     "whitespace only is unknown",
			isp:      "   ",
			expected: models.ConnectionUnknown,
		},
	}

	c := Default()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(tc.isp)
			if got != tc.expected {
				t.Errorf("Classify(%q) = %v, want %v", tc.isp, got, tc.expected)
			}
		})
	}
}

func TestClassifyRuleOrder(t *testing.T) {
	c := Default()

	// Names matching several categories resolve to the earliest rule.
	if got := c.Classify("Mobile Fiber Co"); got != models.ConnectionCellular {
		t.Errorf("Classify(mobile+fiber) = %v, want %v", got, models.ConnectionCellular)
	}
	if got := c.Classify("Fiber Cable Networks"); got != models.ConnectionFiber {
		t.Errorf("Classify(fiber+cable) = %v, want %v", got, models.ConnectionFiber)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := Default()
	first := c.Classify("Comcast Cable Communications, LLC")
	for i := 0; i < 10; i++ {
		if got := c.Classify("Comcast Cable Communications, LLC"); got != first {
			t.Fatalf("Classify() = %v on attempt %d, want %v", got, i, first)
		}
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `- type: cellular
  keywords: ["acme mobile"]
- type: dsl
  keywords: ["acme"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing rules file: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("LoadRules() returned %d rules, want 2", len(rules))
	}

	c := New(rules)
	if got := c.Classify("Acme Mobile Ltd"); got != models.ConnectionCellular {
		t.Errorf("Classify(Acme Mobile Ltd) = %v, want %v", got, models.ConnectionCellular)
	}
	// The narrower rule comes first, so the broad "acme" keyword only
	// catches what the cellular rule did not.
	if got := c.Classify("Acme Broadband"); got != models.ConnectionDSL {
		t.Errorf("Classify(Acme Broadband) = %v, want %v", got, models.ConnectionDSL)
	}
}

func TestLoadRulesRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown connection type",
			content: "- type: satellite\n  keywords: [\"starlink\"]\n",
		},
		{
			name:    "no keywords",
			content: "- type: cable\n  keywords: []\n",
		},
		{
			name:    "blank keyword",
			content: "- type: cable\n  keywords: [\"  \"]\n",
		},
		{
			name:    "empty rule list",
			content: "[]\n",
		},
		{
			name:    "not yaml",
			content: "{{{",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("writing rules file: %v", err)
			}
			if _, err := LoadRules(path); err == nil {
				t.Errorf("LoadRules() error = nil, want error")
			}
		})
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("LoadRules() error = nil, want error")
	}
}
