package notify

// Config holds the Discord webhook URLs.
type Config struct {
	WebhookURL      string `mapstructure:"webhook_url"`
	WebhookError    string `mapstructure:"webhook_error"`
	WebhookRunStart string `mapstructure:"webhook_run_start"`
	WebhookRunEnd   string `mapstructure:"webhook_run_end"`
	WebhookChanges  string `mapstructure:"webhook_changes"`
	Username        string `mapstructure:"username" default:"Collection Manager"`
}

// Enabled reports whether any webhook is configured.
func (c Config) Enabled() bool {
	return c.WebhookURL != "" || c.WebhookError != "" || c.WebhookRunStart != "" ||
		c.WebhookRunEnd != "" || c.WebhookChanges != ""
}

func (c Config) url(e event) string {
	var u string
	switch e {
	case eventError:
		u = c.WebhookError
	case eventRunStart:
		u = c.WebhookRunStart
	case eventRunEnd:
		u = c.WebhookRunEnd
	case eventChanges:
		u = c.WebhookChanges
	}
	if u == "" {
		return c.WebhookURL
	}
	return u
}
