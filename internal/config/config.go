// Package config reads create-liveview settings from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/shinji-kodama/create-liveview/internal/model"
)

// Config holds the environment-provided settings. Every field has a
// default, so an empty environment targets the upstream ts-liveview
// repository on GitHub.
type Config struct {
	// GitHost is the base URL of the git server.
	GitHost string `env:"CREATE_LIVEVIEW_GIT_HOST" envDefault:"https://github.com"`

	// RepoOrg owns the template repository.
	RepoOrg string `env:"CREATE_LIVEVIEW_REPO_ORG" envDefault:"beenotung"`

	// RepoName is the template repository name.
	RepoName string `env:"CREATE_LIVEVIEW_REPO_NAME" envDefault:"ts-liveview"`

	// Profile is the path of a template profile. Empty uses the embedded
	// ts-liveview profile.
	Profile string `env:"CREATE_LIVEVIEW_PROFILE"`

	// HelpRunner selects how the help script runs: auto, node or docker.
	HelpRunner string `env:"CREATE_LIVEVIEW_HELP_RUNNER" envDefault:"auto"`

	// HelpImage is the image used by the docker help runner.
	HelpImage string `env:"CREATE_LIVEVIEW_HELP_IMAGE" envDefault:"node:lts-alpine"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	cfg := Config{} //nolint:exhaustruct // unmarshal
	if err := env.Parse(&cfg); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to read environment variables", err)
	}
	return &cfg, nil
}

// RepoURL returns "<host>/<org>/<name>".
func (c *Config) RepoURL() string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.GitHost, "/"), c.RepoOrg, c.RepoName)
}

// GitSrc returns the clone source for branch, "<repo url>#<branch>".
func (c *Config) GitSrc(branch string) string {
	return c.RepoURL() + "#" + branch
}

// ReadmeURL returns the link to the template README on branch.
func (c *Config) ReadmeURL(branch string) string {
	return fmt.Sprintf("%s/blob/%s/README.md", c.RepoURL(), branch)
}
