package config

import (
	"os"

	"azdoctl/internal/connection"
)

// Field names used for identity resolution and provenance.
const (
	FieldOrganization = "organization"
	FieldTenantID     = "tenantId"
	FieldClientID     = "clientId"
	FieldClientSecret = "clientSecret"
	FieldProject      = "project"
)

// EnvVars maps identity fields to the environment variables consulted
// during resolution.
var EnvVars = map[string]string{
	FieldOrganization: "AZDO_ORG_URL",
	FieldTenantID:     "AZDO_TENANT_ID",
	FieldClientID:     "AZDO_CLIENT_ID",
	FieldClientSecret: "AZDO_CLIENT_SECRET",
	FieldProject:      "AZDO_PROJECT",
}

// Provider is a named source of identity field values. Providers are
// consulted in order; the first non-empty answer wins and is recorded in
// the identity's provenance.
type Provider struct {
	Source connection.Source
	Lookup func(field string) string
}

// FlagProvider resolves fields from explicit command-line flag values.
func FlagProvider(flags map[string]string) Provider {
	return Provider{
		Source: connection.SourceFlag,
		Lookup: func(field string) string { return flags[field] },
	}
}

// EnvProvider resolves fields from AZDO_* environment variables.
func EnvProvider() Provider {
	return Provider{
		Source: connection.SourceEnv,
		Lookup: func(field string) string {
			name, ok := EnvVars[field]
			if !ok {
				return ""
			}
			return os.Getenv(name)
		},
	}
}

// FileProvider resolves fields from the loaded config file. The client
// secret is deliberately not resolvable here.
func FileProvider(cfg Config) Provider {
	return Provider{
		Source: connection.SourceConfig,
		Lookup: func(field string) string {
			switch field {
			case FieldOrganization:
				return cfg.Organization
			case FieldTenantID:
				return cfg.TenantID
			case FieldClientID:
				return cfg.ClientID
			case FieldProject:
				return cfg.Project
			}
			return ""
		},
	}
}

// Resolve builds a connection identity from the given providers. Fields no
// provider answers stay empty and get no provenance entry; requiredness is
// the connection manager's concern, not resolution's.
func Resolve(providers ...Provider) connection.Identity {
	provenance := make(map[string]connection.Source)

	lookup := func(field string) string {
		for _, p := range providers {
			if value := p.Lookup(field); value != "" {
				provenance[field] = p.Source
				return value
			}
		}
		return ""
	}

	identity := connection.Identity{
		OrganizationURL: lookup(FieldOrganization),
		TenantID:        lookup(FieldTenantID),
		ClientID:        lookup(FieldClientID),
		Project:         lookup(FieldProject),
	}

	if secret := lookup(FieldClientSecret); secret != "" {
		identity.ClientSecret = connection.NewSecret(secret)
	}

	identity.Provenance = provenance
	return identity
}
