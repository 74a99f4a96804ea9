package validation

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/convergenps/sheetctl/internal/domain"
)

// ValidateProfile checks an import profile before a run starts. A category
// the backend does not support is a configuration error here, never a
// runtime failure.
func ValidateProfile(p *domain.ImportProfile) error {
	if p == nil {
		return errors.New("nil profile")
	}
	if p.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if u, err := url.Parse(p.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint must be an absolute URL: %s", p.Endpoint)
	}

	switch p.Strategy {
	case domain.StrategyAtomic, domain.StrategySequential, "":
	default:
		return fmt.Errorf("unknown strategy: %s", p.Strategy)
	}

	if len(p.Categories) == 0 {
		return errors.New("at least one category is required")
	}

	supported := make(map[domain.Category]bool)
	for _, c := range domain.SupportedCategories() {
		supported[c] = true
	}

	seen := make(map[domain.Category]bool)
	for _, c := range p.Categories {
		if c == domain.CategoryAll {
			return errors.New(`"all" is a strategy, not a category; use strategy: atomic`)
		}
		if !supported[c] {
			return fmt.Errorf("unsupported category: %s", c)
		}
		if seen[c] {
			return fmt.Errorf("duplicate category: %s", c)
		}
		seen[c] = true
	}

	if p.DelayMS < 0 {
		return fmt.Errorf("inter_call_delay_ms must be >= 0, got %d", p.DelayMS)
	}

	return nil
}

// ValidateCredentials checks presence only; format is the backend's call.
func ValidateCredentials(creds domain.Credentials) error {
	if creds.Email == "" {
		return errors.New("admin email is required (set SHEETCTL_ADMIN_EMAIL)")
	}
	if creds.Password == "" {
		return errors.New("admin password is required (set SHEETCTL_ADMIN_PASSWORD)")
	}
	return nil
}
