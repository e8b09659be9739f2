package search

import (
	"fmt"
	"strings"
)

// ProviderStatus is one provider's entry in setup guidance.
type ProviderStatus struct {
	Provider string `json:"provider"`
	Outcome  Kind   `json:"outcome"`
	Message  string `json:"message,omitempty"`
	Setup    Setup  `json:"setup"`
}

// Guidance tells the user which providers were tried, why each one failed and how to
// configure them.
type Guidance struct {
	Providers []ProviderStatus `json:"providers"`
	NextSteps []string         `json:"next_steps"`
}

func buildGuidance(providers []Provider, attempts []Attempt) *Guidance {
	outcomes := make(map[string]Attempt, len(attempts))
	for _, a := range attempts {
		outcomes[a.Provider] = a
	}

	g := &Guidance{}
	anyConfigured := false
	for _, p := range providers {
		status := ProviderStatus{Provider: p.Name(), Setup: p.Setup(), Outcome: KindNotConfigured}
		if a, ok := outcomes[p.Name()]; ok {
			status.Outcome = a.Outcome
			status.Message = a.Message
		}
		if status.Outcome != KindNotConfigured {
			anyConfigured = true
		}
		g.Providers = append(g.Providers, status)
	}

	g.NextSteps = nextSteps(g.Providers, anyConfigured)
	return g
}

func nextSteps(statuses []ProviderStatus, anyConfigured bool) []string {
	var steps []string
	if !anyConfigured && len(statuses) > 0 {
		first := statuses[0].Setup
		steps = append(steps,
			fmt.Sprintf("Sign up for %s at %s (recommended)", first.Title, first.SignupURL),
			fmt.Sprintf("Get your API key and set %s", strings.Join(first.Credentials, ", ")),
		)
		for _, s := range statuses[1:] {
			steps = append(steps, fmt.Sprintf("Alternatively, sign up for %s and set %s", s.Setup.Title, strings.Join(s.Setup.Credentials, ", ")))
		}
	}

	for _, s := range statuses {
		switch s.Outcome {
		case KindUnauthorized:
			steps = append(steps, fmt.Sprintf("Check the %s credentials (%s); the provider rejected them", s.Setup.Title, strings.Join(s.Setup.Credentials, ", ")))
		case KindRateLimited:
			steps = append(steps, fmt.Sprintf("Wait for the %s quota to reset (%s) or configure another provider", s.Setup.Title, s.Setup.FreeTier))
		case KindTransient:
			steps = append(steps, fmt.Sprintf("Retry later; %s did not respond in time", s.Setup.Title))
		}
	}

	steps = append(steps, "Put credentials in the environment or a .env file and run the command again")
	for i := range steps {
		steps[i] = fmt.Sprintf("%d. %s", i+1, steps[i])
	}
	return steps
}

// String renders the guidance as plain text for terminals.
func (g *Guidance) String() string {
	if g == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Providers:\n")
	for _, s := range g.Providers {
		fmt.Fprintf(&sb, "  - %s: %s", s.Provider, strings.ReplaceAll(string(s.Outcome), "_", " "))
		if len(s.Setup.Missing) > 0 {
			fmt.Fprintf(&sb, " (missing %s)", strings.Join(s.Setup.Missing, ", "))
		}
		if s.Message != "" {
			fmt.Fprintf(&sb, ": %s", s.Message)
		}
		sb.WriteString("\n")
		if s.Setup.SignupURL != "" {
			fmt.Fprintf(&sb, "    sign up: %s\n", s.Setup.SignupURL)
		}
		if s.Setup.FreeTier != "" {
			fmt.Fprintf(&sb, "    free tier: %s\n", s.Setup.FreeTier)
		}
		if len(s.Setup.Credentials) > 0 {
			fmt.Fprintf(&sb, "    credentials: %s\n", strings.Join(s.Setup.Credentials, ", "))
		}
	}

	sb.WriteString("Next steps:\n")
	for _, step := range g.NextSteps {
		fmt.Fprintf(&sb, "  %s\n", step)
	}
	return sb.String()
}
