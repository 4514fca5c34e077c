package connector

import "testing"

func TestValidateURL(t *testing.T) {
	blocked := DefaultBlockedHosts()

	cases := []struct {
		name         string
		url          string
		allowedHosts []string
		wantErr      bool
	}{
		{"public IP allowed", "https://8.8.8.8/v1/chat", nil, false},
		{"loopback blocked by default", "http://127.0.0.1:8080", nil, true},
		{"loopback allowed with explicit allowlist", "http://127.0.0.1:8080", []string{"127.0.0.1"}, false},
		{"metadata endpoint always blocked", "http://169.254.169.254/latest/meta-data", nil, true},
		{"metadata endpoint blocked even with allowlist", "http://169.254.169.254/latest/meta-data", []string{"169.254.169.254"}, true},
		{"private range blocked by default", "http://10.1.2.3", nil, true},
		{"host not in allowlist rejected", "https://evil.example.com", []string{"api.openai.com"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateURL(tc.url, tc.allowedHosts, blocked)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error for %s, got nil", tc.url)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error for %s, got %v", tc.url, err)
			}
		})
	}
}

func TestValidatePathParameter(t *testing.T) {
	if err := ValidatePathParameter("id", "patient-123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := ValidatePathParameter("id", "../../etc/passwd"); err == nil {
		t.Fatal("expected path traversal to be rejected")
	}
	if err := ValidatePathParameter("id", "foo\x00bar"); err == nil {
		t.Fatal("expected null byte to be rejected")
	}
}
