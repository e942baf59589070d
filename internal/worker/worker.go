package worker

import (
	"context"

	"github.com/cogestio/espaceclient/internal/config"
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/helper"
	"github.com/cogestio/espaceclient/internal/smtp"
	"github.com/cogestio/espaceclient/internal/stream"
)

type Worker struct {
	KafkaStream *stream.KafkaStream
	DB          *database.DB
	Mailer      smtp.MailerInterface
	Helper      *helper.HelperRepository
	Config      *config.Config
	Ctx         context.Context
}

const (
	// notifierGroupID is shared by the consumers that turn document-review
	// events into transactional emails.
	notifierGroupID = "kyc-notifier-group"
)

// Our workers typically need access to the database, the mailer and the
// kafka event stream; worker-specific dependencies are passed as arguments
// to the worker.
func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream: wk.KafkaStream,
		DB:          wk.DB,
		Mailer:      wk.Mailer,
		Helper:      wk.Helper,
		Config:      wk.Config,
		Ctx:         wk.Ctx,
	}
}
