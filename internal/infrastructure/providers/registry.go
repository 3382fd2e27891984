package providers

import (
	"os"
	"sort"

	"jarvis-integrations-layer/internal/domain"
)

// Config is the static, per-service OAuth configuration. Loaded once at
// process start from environment; never mutated afterwards.
type Config struct {
	Service          string
	ClientID         string
	ClientSecret     string
	AuthorizationURL string
	TokenURL         string
	Scopes           []string
	RedirectURI      string
	UsePKCE          bool
	UseBasicAuth     bool
	// AdditionalParams are provider-fixed query parameters appended to the
	// authorization URL (e.g. Google's access_type=offline).
	AdditionalParams map[string]string
	// CustomHeaders are merged into the token exchange request.
	CustomHeaders map[string]string
}

// Descriptor is the user-facing description of an integrable service.
type Descriptor struct {
	Service     string `json:"service"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	IconName    string `json:"icon_name,omitempty"`
}

// Registry is a pure lookup over the configured providers.
type Registry struct {
	configs     map[string]Config
	descriptors map[string]Descriptor
}

// URL-style service names (hyphenated) map to registry keys (underscored).
var serviceAliases = map[string]string{
	"google-calendar":            "google_calendar",
	"google-docs":                "google_docs",
	"google-sheets":              "google_sheets",
	"google-meet":                "google_meet",
	"microsoft-excel":            "microsoft_excel",
	"microsoft-word":             "microsoft_word",
	"microsoft-outlook-calendar": "microsoft_outlook_calendar",
	"outlook-calendar":           "microsoft_outlook_calendar",
	"microsoft-outlook-mail":     "microsoft_outlook_mail",
	"outlook-mail":               "microsoft_outlook_mail",
	"microsoft-teams":            "microsoft_teams",
	"my-chart":                   "mychart",
}

// NewRegistry builds the provider registry from environment credentials.
// siteURL is the public base URL used for redirect URIs.
func NewRegistry(siteURL string) *Registry {
	googleParams := map[string]string{
		"access_type": "offline",
		"prompt":      "consent",
	}
	microsoftScopes := func(extra ...string) []string {
		return append(extra, "offline_access")
	}

	configs := map[string]Config{
		"oura": {
			Service:          "oura",
			ClientID:         os.Getenv("OURA_CLIENT_ID"),
			ClientSecret:     os.Getenv("OURA_CLIENT_SECRET"),
			AuthorizationURL: "https://cloud.ouraring.com/oauth/authorize",
			TokenURL:         "https://api.ouraring.com/oauth/token",
			Scopes:           []string{"email", "personal", "daily", "heartrate", "workout", "tag", "session", "spo2", "stress"},
			RedirectURI:      siteURL + "/oauth/oura/web-callback",
			UseBasicAuth:     true,
		},
		"fitbit": {
			Service:          "fitbit",
			ClientID:         os.Getenv("FITBIT_CLIENT_ID"),
			ClientSecret:     os.Getenv("FITBIT_CLIENT_SECRET"),
			AuthorizationURL: "https://www.fitbit.com/oauth2/authorize",
			TokenURL:         "https://api.fitbit.com/oauth2/token",
			Scopes:           []string{"activity", "heartrate", "location", "nutrition", "profile", "settings", "sleep", "social", "weight"},
			RedirectURI:      siteURL + "/oauth/fitbit/web-callback",
			UseBasicAuth:     true,
		},
		"google_calendar": {
			Service:          "google_calendar",
			ClientID:         os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret:     os.Getenv("GOOGLE_CLIENT_SECRET"),
			AuthorizationURL: "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:         "https://oauth2.googleapis.com/token",
			Scopes:           []string{"https://www.googleapis.com/auth/calendar.events", "https://www.googleapis.com/auth/userinfo.email"},
			RedirectURI:      siteURL + "/oauth/google-calendar/web-callback",
			AdditionalParams: googleParams,
		},
		"gmail": {
			Service:          "gmail",
			ClientID:         os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret:     os.Getenv("GOOGLE_CLIENT_SECRET"),
			AuthorizationURL: "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:         "https://oauth2.googleapis.com/token",
			Scopes:           []string{"https://www.googleapis.com/auth/gmail.send", "https://www.googleapis.com/auth/gmail.modify", "https://www.googleapis.com/auth/userinfo.email"},
			RedirectURI:      siteURL + "/oauth/gmail/web-callback",
			AdditionalParams: googleParams,
		},
		"google_docs": {
			Service:          "google_docs",
			ClientID:         os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret:     os.Getenv("GOOGLE_CLIENT_SECRET"),
			AuthorizationURL: "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:         "https://oauth2.googleapis.com/token",
			Scopes:           []string{"https://www.googleapis.com/auth/documents", "https://www.googleapis.com/auth/userinfo.email"},
			RedirectURI:      siteURL + "/oauth/google-docs/web-callback",
			AdditionalParams: googleParams,
		},
		"google_sheets": {
			Service:          "google_sheets",
			ClientID:         os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret:     os.Getenv("GOOGLE_CLIENT_SECRET"),
			AuthorizationURL: "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:         "https://oauth2.googleapis.com/token",
			Scopes:           []string{"https://www.googleapis.com/auth/spreadsheets", "https://www.googleapis.com/auth/userinfo.email"},
			RedirectURI:      siteURL + "/oauth/google-sheets/web-callback",
			AdditionalParams: googleParams,
		},
		"google_meet": {
			Service:          "google_meet",
			ClientID:         os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret:     os.Getenv("GOOGLE_CLIENT_SECRET"),
			AuthorizationURL: "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:         "https://oauth2.googleapis.com/token",
			Scopes:           []string{"https://www.googleapis.com/auth/meetings", "https://www.googleapis.com/auth/calendar.events", "https://www.googleapis.com/auth/userinfo.email"},
			RedirectURI:      siteURL + "/oauth/google-meet/web-callback",
			AdditionalParams: googleParams,
		},
		"microsoft_excel": {
			Service:          "microsoft_excel",
			ClientID:         os.Getenv("MICROSOFT_CLIENT_ID"),
			ClientSecret:     os.Getenv("MICROSOFT_CLIENT_SECRET"),
			AuthorizationURL: "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
			TokenURL:         "https://login.microsoftonline.com/common/oauth2/v2.0/token",
			Scopes:           microsoftScopes("https://graph.microsoft.com/Files.ReadWrite.All", "https://graph.microsoft.com/Sites.ReadWrite.All"),
			RedirectURI:      siteURL + "/oauth/microsoft-excel/web-callback",
		},
		"microsoft_word": {
			Service:          "microsoft_word",
			ClientID:         os.Getenv("MICROSOFT_CLIENT_ID"),
			ClientSecret:     os.Getenv("MICROSOFT_CLIENT_SECRET"),
			AuthorizationURL: "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
			TokenURL:         "https://login.microsoftonline.com/common/oauth2/v2.0/token",
			Scopes:           microsoftScopes("https://graph.microsoft.com/Files.ReadWrite.All", "https://graph.microsoft.com/Sites.ReadWrite.All"),
			RedirectURI:      siteURL + "/oauth/microsoft-word/web-callback",
		},
		"microsoft_outlook_calendar": {
			Service:          "microsoft_outlook_calendar",
			ClientID:         os.Getenv("MICROSOFT_CLIENT_ID"),
			ClientSecret:     os.Getenv("MICROSOFT_CLIENT_SECRET"),
			AuthorizationURL: "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
			TokenURL:         "https://login.microsoftonline.com/common/oauth2/v2.0/token",
			Scopes:           microsoftScopes("https://graph.microsoft.com/Calendars.ReadWrite", "https://graph.microsoft.com/User.Read"),
			RedirectURI:      siteURL + "/oauth/outlook-calendar/web-callback",
		},
		"microsoft_outlook_mail": {
			Service:          "microsoft_outlook_mail",
			ClientID:         os.Getenv("MICROSOFT_CLIENT_ID"),
			ClientSecret:     os.Getenv("MICROSOFT_CLIENT_SECRET"),
			AuthorizationURL: "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
			TokenURL:         "https://login.microsoftonline.com/common/oauth2/v2.0/token",
			Scopes:           microsoftScopes("https://graph.microsoft.com/Mail.ReadWrite", "https://graph.microsoft.com/Mail.Send", "https://graph.microsoft.com/User.Read"),
			RedirectURI:      siteURL + "/oauth/outlook-mail/web-callback",
		},
		"microsoft_teams": {
			Service:          "microsoft_teams",
			ClientID:         os.Getenv("MICROSOFT_CLIENT_ID"),
			ClientSecret:     os.Getenv("MICROSOFT_CLIENT_SECRET"),
			AuthorizationURL: "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
			TokenURL:         "https://login.microsoftonline.com/common/oauth2/v2.0/token",
			Scopes:           microsoftScopes("https://graph.microsoft.com/Chat.ReadWrite", "https://graph.microsoft.com/Team.ReadBasic.All", "https://graph.microsoft.com/User.Read"),
			RedirectURI:      siteURL + "/oauth/microsoft-teams/web-callback",
		},
		"slack": {
			Service:          "slack",
			ClientID:         os.Getenv("SLACK_CLIENT_ID"),
			ClientSecret:     os.Getenv("SLACK_CLIENT_SECRET"),
			AuthorizationURL: "https://slack.com/oauth/v2/authorize",
			TokenURL:         "https://slack.com/api/oauth.v2.access",
			Scopes:           []string{"assistant:write", "channels:history", "channels:read", "chat:write", "files:read", "files:write", "im:history", "im:read", "im:write", "team:read", "users:read", "reactions:read", "reactions:write", "channels:join"},
			RedirectURI:      siteURL + "/oauth/slack/web-callback",
		},
		"notion": {
			Service:          "notion",
			ClientID:         os.Getenv("NOTION_CLIENT_ID"),
			ClientSecret:     os.Getenv("NOTION_CLIENT_SECRET"),
			AuthorizationURL: "https://api.notion.com/v1/oauth/authorize",
			TokenURL:         "https://api.notion.com/v1/oauth/token",
			Scopes:           []string{},
			RedirectURI:      siteURL + "/oauth/notion/web-callback",
			UseBasicAuth:     true,
		},
		"todoist": {
			Service:          "todoist",
			ClientID:         os.Getenv("TODOIST_CLIENT_ID"),
			ClientSecret:     os.Getenv("TODOIST_CLIENT_SECRET"),
			AuthorizationURL: "https://todoist.com/oauth/authorize",
			TokenURL:         "https://todoist.com/oauth/access_token",
			Scopes:           []string{"data:read_write"},
			RedirectURI:      siteURL + "/oauth/todoist/web-callback",
		},
		"mychart": {
			Service:          "mychart",
			ClientID:         os.Getenv("MYCHART_CLIENT_ID"),
			ClientSecret:     os.Getenv("MYCHART_CLIENT_SECRET"),
			AuthorizationURL: "https://fhir.epic.com/interconnect-fhir-oauth/oauth2/authorize",
			TokenURL:         "https://fhir.epic.com/interconnect-fhir-oauth/oauth2/token",
			Scopes:           []string{"patient/Patient.rs", "patient/Observation.rs", "patient/Condition.rs", "patient/Immunization.rs", "patient/MedicationRequest.rs", "openid", "fhirUser", "offline_access", "launch"},
			RedirectURI:      siteURL + "/oauth/mychart/web-callback",
			UsePKCE:          true,
			AdditionalParams: map[string]string{
				"aud": "https://fhir.epic.com/interconnect-fhir-oauth/api/FHIR/R4/",
			},
		},
	}

	return &Registry{
		configs:     configs,
		descriptors: serviceDescriptors,
	}
}

// Get resolves a service name (registry key or URL-style alias) to its
// configuration. Unknown names return domain.ErrConfigNotFound, never a panic.
func (r *Registry) Get(service string) (Config, error) {
	key := service
	if alias, ok := serviceAliases[service]; ok {
		key = alias
	}
	cfg, ok := r.configs[key]
	if !ok {
		return Config{}, domain.ErrConfigNotFound
	}
	return cfg, nil
}

// Describe returns the service descriptor for a service name or alias.
func (r *Registry) Describe(service string) (Descriptor, error) {
	key := service
	if alias, ok := serviceAliases[service]; ok {
		key = alias
	}
	d, ok := r.descriptors[key]
	if !ok {
		return Descriptor{}, domain.ErrConfigNotFound
	}
	return d, nil
}

// Configured lists the services that have a non-empty client id, sorted.
func (r *Registry) Configured() []string {
	var names []string
	for name, cfg := range r.configs {
		if cfg.ClientID != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
