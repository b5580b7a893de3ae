package config

import (
	"testing"
	"time"
)

func TestResolveOrigin_Precedence(t *testing.T) {
	tests := []struct {
		name      string
		flagValue string
		envValue  string
		want      string
	}{
		{
			name:      "flag wins over env",
			flagValue: "/local/catalog",
			envValue:  "https://example.test/catalog.zip",
			want:      "/local/catalog",
		},
		{
			name:     "env wins over default",
			envValue: "https://example.test/catalog.zip",
			want:     "https://example.test/catalog.zip",
		},
		{
			name: "default when nothing set",
			want: DefaultCatalogOrigin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvCatalogOrigin, tt.envValue)
			if got := ResolveOrigin(tt.flagValue); got != tt.want {
				t.Errorf("ResolveOrigin(%q) = %q, want %q", tt.flagValue, got, tt.want)
			}
		})
	}
}

func TestSync_WithDefaults(t *testing.T) {
	t.Setenv(EnvCatalogOrigin, "")

	got := Sync{}.WithDefaults()

	if got.CatalogOrigin != DefaultCatalogOrigin {
		t.Errorf("CatalogOrigin = %q, want default", got.CatalogOrigin)
	}
	if got.ProjectRoot != "." {
		t.Errorf("ProjectRoot = %q, want %q", got.ProjectRoot, ".")
	}
	if got.MatchPolicy != MatchPolicyAny {
		t.Errorf("MatchPolicy = %q, want %q", got.MatchPolicy, MatchPolicyAny)
	}
	if got.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("FetchTimeout = %v, want %v", got.FetchTimeout, DefaultFetchTimeout)
	}
}

func TestSync_WithDefaults_KeepsExplicitValues(t *testing.T) {
	in := Sync{
		CatalogOrigin: "/catalog",
		ProjectRoot:   "/project",
		MatchPolicy:   MatchPolicyAll,
		FetchTimeout:  5 * time.Second,
		Yes:           true,
	}

	got := in.WithDefaults()

	if got != in {
		t.Errorf("WithDefaults() = %+v, want unchanged %+v", got, in)
	}
}
