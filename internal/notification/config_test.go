package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"complaint-portal/internal/common/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "smtp.gmail.com", cfg.Host)
	assert.Equal(t, 465, cfg.Port)
	assert.Equal(t, "Complaint Portal", cfg.FromName)
	assert.False(t, cfg.Ready())
	assert.Equal(t, []string{"SMTP_USER", "SMTP_PASSWORD", "EMAILS_FROM_EMAIL"}, cfg.MissingCredentials())
	assert.Equal(t, "smtp.gmail.com:465", cfg.Address())
}

func TestConfigFrom(t *testing.T) {
	tests := []struct {
		name string
		in   config.SMTPConfig
		want Config
	}{
		{
			name: "empty section keeps defaults",
			in:   config.SMTPConfig{},
			want: DefaultConfig(),
		},
		{
			name: "everything set",
			in: config.SMTPConfig{
				Host:      "mail.school.edu",
				Port:      2465,
				Username:  "mailer",
				Password:  "pw",
				FromEmail: "noreply@school.edu",
				FromName:  "Helpdesk",
			},
			want: Config{
				Host:        "mail.school.edu",
				Port:        2465,
				Username:    "mailer",
				Password:    "pw",
				FromAddress: "noreply@school.edu",
				FromName:    "Helpdesk",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFrom(tt.in))
		})
	}
}

func TestMissingCredentials(t *testing.T) {
	full := Config{Username: "u", Password: "p", FromAddress: "f@x.io"}
	assert.Empty(t, full.MissingCredentials())
	assert.True(t, full.Ready())

	noPass := full
	noPass.Password = ""
	assert.Equal(t, []string{"SMTP_PASSWORD"}, noPass.MissingCredentials())

	ipv6 := Config{Host: "::1", Port: 465}
	assert.Equal(t, "[::1]:465", ipv6.Address())
}
