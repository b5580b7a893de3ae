package config

import (
	"os"
	"time"
)

const (
	// DefaultCatalogOrigin is the archive fetched when no origin is configured.
	DefaultCatalogOrigin = "https://github.com/gorewood/skills/archive/refs/heads/main.zip"

	// EnvCatalogOrigin is the environment variable that overrides the default
	// origin. An explicit --catalog-origin flag still wins over it.
	EnvCatalogOrigin = "CATALOG_ORIGIN"

	// DefaultFetchTimeout bounds the remote catalog download.
	DefaultFetchTimeout = 30 * time.Second

	// MatchPolicyAny selects an entry when any declared trigger matches.
	MatchPolicyAny = "any"
	// MatchPolicyAll selects an entry only when every declared trigger matches.
	MatchPolicyAll = "all"
)

// Sync holds one run's worth of settings. Commands fill it from flags and the
// environment before the pipeline starts; nothing reads ambient state mid-run,
// so two runs with equal Sync values and equal inputs produce equal output.
type Sync struct {
	// CatalogOrigin is a local directory or a remote zip archive URL.
	CatalogOrigin string
	// ProjectRoot is the project to inspect and write into.
	ProjectRoot string
	// Yes skips the confirmation suspension.
	Yes bool
	// DryRun stops after rendering and prints the plan; never writes, never prompts.
	DryRun bool
	// MatchPolicy is MatchPolicyAny or MatchPolicyAll.
	MatchPolicy string
	// Name overrides the detected project name.
	Name string
	// Purpose overrides the detected project purpose.
	Purpose string
	// FetchTimeout bounds the remote download. Zero means DefaultFetchTimeout.
	FetchTimeout time.Duration
}

// WithDefaults fills zero-valued fields that have defaults.
func (s Sync) WithDefaults() Sync {
	if s.CatalogOrigin == "" {
		s.CatalogOrigin = ResolveOrigin("")
	}
	if s.ProjectRoot == "" {
		s.ProjectRoot = "."
	}
	if s.MatchPolicy == "" {
		s.MatchPolicy = MatchPolicyAny
	}
	if s.FetchTimeout == 0 {
		s.FetchTimeout = DefaultFetchTimeout
	}
	return s
}

// ResolveOrigin applies the flag > environment > default precedence for the
// catalog origin.
func ResolveOrigin(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvCatalogOrigin); env != "" {
		return env
	}
	return DefaultCatalogOrigin
}
