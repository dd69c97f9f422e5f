package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mailroom/mailroom/pkg/mailer"
)

type companyProfile struct {
	Name         string            `yaml:"name"`
	Address      string            `yaml:"address"`
	Website      string            `yaml:"website"`
	SupportEmail string            `yaml:"support_email"`
	SupportName  string            `yaml:"support_name"`
	SocialMedia  map[string]string `yaml:"social_media"`
	LogoURL      string            `yaml:"logo_url"`
}

// LoadCompanyProfile reads a YAML company profile from path.
func LoadCompanyProfile(path string) (*mailer.Company, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read company profile: %w", err)
	}

	var profile companyProfile
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("parse company profile: %w", err)
	}
	if profile.Name == "" {
		return nil, fmt.Errorf("company profile %s: name is required", path)
	}

	company := &mailer.Company{
		Name:        profile.Name,
		Address:     profile.Address,
		Website:     profile.Website,
		SocialMedia: profile.SocialMedia,
		LogoURL:     profile.LogoURL,
	}
	if profile.SupportEmail != "" {
		support, err := mailer.NewEmailAddress(profile.SupportEmail, profile.SupportName)
		if err != nil {
			return nil, fmt.Errorf("company profile %s: %w", path, err)
		}
		company.SupportEmail = support
	}
	return company, nil
}
