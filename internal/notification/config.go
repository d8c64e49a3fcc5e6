package notification

import (
	"net"
	"strconv"

	"complaint-portal/internal/common/config"
)

const (
	DefaultHost     = "smtp.gmail.com"
	DefaultPort     = 465
	DefaultFromName = "Complaint Portal"
)

// Config is the immutable SMTP configuration a Sender is built with.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

func DefaultConfig() Config {
	return Config{
		Host:     DefaultHost,
		Port:     DefaultPort,
		FromName: DefaultFromName,
	}
}

// ConfigFrom maps the loaded SMTP section, keeping defaults for empty fields.
func ConfigFrom(c config.SMTPConfig) Config {
	cfg := DefaultConfig()
	if c.Host != "" {
		cfg.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if c.FromName != "" {
		cfg.FromName = c.FromName
	}
	cfg.Username = c.Username
	cfg.Password = c.Password
	cfg.FromAddress = c.FromEmail
	return cfg
}

// MissingCredentials returns the environment names of the settings that must
// be present before anything is sent, in a fixed order.
func (c Config) MissingCredentials() []string {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "SMTP_USER")
	}
	if c.Password == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if c.FromAddress == "" {
		missing = append(missing, "EMAILS_FROM_EMAIL")
	}
	return missing
}

// Ready reports whether sending is possible at all.
func (c Config) Ready() bool {
	return len(c.MissingCredentials()) == 0
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
