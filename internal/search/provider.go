// Package search queries job providers in priority order and falls back to the next
// provider when one is unconfigured, fails or finds nothing.
package search

import (
	"context"

	"github.com/spigell/jobscout/internal/jobs"
)

// Query is a single provider request.
type Query struct {
	Text     string
	Location string
	Page     int
	Limit    int
}

// Setup describes how a user obtains and supplies credentials for a provider.
type Setup struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	SignupURL   string   `json:"signup_url,omitempty"`
	FreeTier    string   `json:"free_tier,omitempty"`
	Credentials []string `json:"credentials"`
	// Missing lists the credential variables that are currently unset.
	Missing []string `json:"missing,omitempty"`
}

// Provider translates a Query into provider requests and maps the response into
// postings. Adding a provider means implementing this interface.
type Provider interface {
	Name() string
	Configured() bool
	Setup() Setup
	Search(ctx context.Context, q Query) ([]jobs.Posting, error)
}
