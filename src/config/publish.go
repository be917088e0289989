package config

import "os"

// Env vars that seed registry credentials so CI runs skip the prompts.
const (
	EnvRegistryUser  = "CHARTFERRY_REGISTRY_USER"
	EnvRegistryToken = "CHARTFERRY_REGISTRY_TOKEN"
)

// PublishConfig configures one publish run. Paths are relative to the
// resolved repository root unless absolute.
type PublishConfig struct {
	RemoteURL string `yaml:"remote_url" toml:"remote_url"` // git remote; default: existing origin URL
	Branch    string `yaml:"branch" toml:"branch"`
	Registry  string `yaml:"registry" toml:"registry"`
	ImageRepo string `yaml:"image_repo" toml:"image_repo"` // full repo; empty = derived from the remote
	ImageTag  string `yaml:"image_tag" toml:"image_tag"`   // empty = timestamp
	ChartDir  string `yaml:"chart_dir" toml:"chart_dir"`   // empty = charts/<repo>
	DocsDir   string `yaml:"docs_dir" toml:"docs_dir"`
	RepoURL   string `yaml:"repo_url" toml:"repo_url"` // chart repo base URL; empty = GitHub Pages convention

	StopCompose bool   `yaml:"stop_compose" toml:"stop_compose"`
	ComposeDir  string `yaml:"compose_dir" toml:"compose_dir"`
	Dockerfile  string `yaml:"dockerfile" toml:"dockerfile"` // empty = Dockerfile.local, then Dockerfile

	Username string `yaml:"-" toml:"-"` // never persisted; env or prompt only
	Token    string `yaml:"-" toml:"-"`
}

// DefaultPublishConfig returns the defaults a bare run starts from.
func DefaultPublishConfig() PublishConfig {
	return PublishConfig{
		Branch:     "main",
		Registry:   "ghcr.io",
		DocsDir:    "docs",
		ComposeDir: "ci_cd",
		Username:   os.Getenv(EnvRegistryUser),
		Token:      os.Getenv(EnvRegistryToken),
	}
}
