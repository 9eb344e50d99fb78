package mail

import (
	"context"

	"github.com/dmitrijs2005/movieapi/internal/logging"
)

// LogNotifier stands in for SMTP when no relay is configured. Only the
// recipient and subject are logged; the body carries the code.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, _ string) error {
	n.logger.Info(ctx, "mail not sent, no smtp relay configured", "to", to, "subject", subject)
	return nil
}
