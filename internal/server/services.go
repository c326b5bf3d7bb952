package server

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/dmitrijs2005/gophaccount/internal/server/httpapi"
	"github.com/dmitrijs2005/gophaccount/internal/server/mail"
	"github.com/dmitrijs2005/gophaccount/internal/server/metrics"
	"github.com/dmitrijs2005/gophaccount/internal/server/services"
	"github.com/dmitrijs2005/gophaccount/internal/server/snapshots"
)

// NewMailer returns an SMTP mailer when SMTPHost is set, else a LogMailer.
func NewMailer(cfg *config.Config, log logging.Logger) (mail.Mailer, error) {
	if cfg.SMTPHost == "" {
		return mail.NewLogMailer(log), nil
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

// NewExporter returns the S3 archive exporter, or nil when no bucket is set.
func NewExporter(ctx context.Context, cfg *config.Config) (services.RecordExporter, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}
	e, err := snapshots.NewS3Exporter(ctx, snapshots.Config{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// NewServices builds every service over b.
func NewServices(b *Backend, cfg *config.Config, log logging.Logger, mx *metrics.Metrics,
	mailer mail.Mailer, exporter services.RecordExporter) (httpapi.Services, error) {

	creds, err := services.NewCredentialService(b.Store, b.Repos, services.NewBcryptHasher(cfg.BcryptCost), log, mx)
	if err != nil {
		return httpapi.Services{}, fmt.Errorf("credential service: %w", err)
	}

	return httpapi.Services{
		Credentials: creds,
		Sessions:    services.NewSessionService(b.Sessions, creds, cfg, log, mx),
		Reset:       services.NewPasswordResetService(creds, services.NewResetTokenService(cfg), mailer, cfg, log, mx),
		Profiles:    services.NewProfileService(b.Store, b.Repos, log),
		Archive:     services.NewArchiveService(b.Store, b.Repos, exporter, log, mx),
	}, nil
}
