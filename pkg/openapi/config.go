package openapi

import (
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"strings"
)

// Config describes the API document's info block and extra server entries.
type Config struct {
	Title        string   `toml:"title"`
	Description  string   `toml:"description"`
	ContactName  string   `toml:"contact_name"`
	ContactEmail string   `toml:"contact_email"`
	ContactURL   string   `toml:"contact_url"`
	License      string   `toml:"license"`
	LicenseURL   string   `toml:"license_url"`
	Servers      []string `toml:"servers"`
}

// ConfigEnv maps environment variable names onto Config fields.
// Servers is read as a comma-separated list.
type ConfigEnv struct {
	Title        string
	Description  string
	ContactName  string
	ContactEmail string
	ContactURL   string
	License      string
	Servers      string
}

func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

func (c *Config) Merge(overlay *Config) {
	for _, f := range []struct {
		dst *string
		v   string
	}{
		{&c.Title, overlay.Title},
		{&c.Description, overlay.Description},
		{&c.ContactName, overlay.ContactName},
		{&c.ContactEmail, overlay.ContactEmail},
		{&c.ContactURL, overlay.ContactURL},
		{&c.License, overlay.License},
		{&c.LicenseURL, overlay.LicenseURL},
	} {
		if f.v != "" {
			*f.dst = f.v
		}
	}
	if len(overlay.Servers) > 0 {
		c.Servers = overlay.Servers
	}
}

// Apply writes the description, contact, license, and servers into s.
func (c *Config) Apply(s *Spec) {
	s.SetDescription(c.Description)
	if c.ContactName != "" || c.ContactEmail != "" || c.ContactURL != "" {
		s.Info.Contact = &Contact{Name: c.ContactName, Email: c.ContactEmail, URL: c.ContactURL}
	}
	if c.License != "" {
		s.Info.License = &License{Name: c.License, URL: c.LicenseURL}
	}
	for _, u := range c.Servers {
		s.AddServer(u)
	}
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "Worksheet Lab API"
	}
	if c.Description == "" {
		c.Description = "Upload, browse, download, and curate printable classroom worksheets."
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	for _, f := range []struct {
		dst  *string
		name string
	}{
		{&c.Title, env.Title},
		{&c.Description, env.Description},
		{&c.ContactName, env.ContactName},
		{&c.ContactEmail, env.ContactEmail},
		{&c.ContactURL, env.ContactURL},
		{&c.License, env.License},
	} {
		if f.name == "" {
			continue
		}
		if v := os.Getenv(f.name); v != "" {
			*f.dst = v
		}
	}

	if env.Servers != "" {
		if v := os.Getenv(env.Servers); v != "" {
			var servers []string
			for _, u := range strings.Split(v, ",") {
				if u = strings.TrimSpace(u); u != "" {
					servers = append(servers, u)
				}
			}
			c.Servers = servers
		}
	}
}

func (c *Config) validate() error {
	if c.ContactEmail != "" {
		if _, err := mail.ParseAddress(c.ContactEmail); err != nil {
			return fmt.Errorf("invalid contact_email: %w", err)
		}
	}
	for _, u := range append([]string{c.ContactURL, c.LicenseURL}, c.Servers...) {
		if u == "" {
			continue
		}
		parsed, err := url.Parse(u)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid url %q: want an absolute http(s) url", u)
		}
	}
	if c.LicenseURL != "" && c.License == "" {
		return fmt.Errorf("license_url set without license")
	}
	return nil
}
