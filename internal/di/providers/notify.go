package providers

import (
	"github.com/samber/do/v2"

	"github.com/singlesjukebox/jukebox-server/internal/config"
	"github.com/singlesjukebox/jukebox-server/internal/logger"
	"github.com/singlesjukebox/jukebox-server/internal/mail"
	"github.com/singlesjukebox/jukebox-server/internal/wordpress"
)

// ProvideMailSender provides SMTP delivery when configured, otherwise a
// sender that only logs.
func ProvideMailSender(i do.Injector) (mail.Sender, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Mail.Enabled() {
		log.Info("SMTP not configured, notifications will be logged")
		return mail.NewLogSender(log.Logger), nil
	}

	log.Info("SMTP notifications enabled", "host", cfg.Mail.Host, "recipients", len(cfg.Mail.Admins))
	sender, err := mail.NewSMTPSender(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, log.Logger)
	if err != nil {
		return nil, err
	}
	return sender, nil
}

// BlogHandle holds the WordPress client. Client is nil when no endpoint
// is configured.
type BlogHandle struct {
	Client *wordpress.Client
}

// ProvideBlog provides the optional WordPress client.
func ProvideBlog(i do.Injector) (*BlogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.WordPress.Enabled() {
		return &BlogHandle{}, nil
	}

	log.Info("WordPress push enabled", "endpoint", cfg.WordPress.Endpoint)
	return &BlogHandle{Client: wordpress.NewClient(wordpress.Config{
		Endpoint: cfg.WordPress.Endpoint,
		BlogID:   cfg.WordPress.BlogID,
		Username: cfg.WordPress.Username,
		Password: cfg.WordPress.Password,
	}, nil, log.Logger)}, nil
}
