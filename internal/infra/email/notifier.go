package email

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

type SMTPNotifier struct {
	host   string
	port   int
	from   string
	logger *zap.Logger
}

func NewSMTPNotifier(host string, port int, from string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from, logger: logger}
}

func (n *SMTPNotifier) NotifyFailure(_ context.Context, userEmail, analysisID, clipKey, errorMsg string) error {
	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	subject := fmt.Sprintf("SportScope - Clip Analysis Failed [%s]", analysisID)
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"Your clip analysis has permanently failed after all retry attempts.\r\n\r\n"+
			"Analysis ID: %s\r\n"+
			"Clip: %s\r\n"+
			"Error: %s\r\n\r\n"+
			"Please try uploading the clip again or contact support.\r\n\r\n"+
			"-- SportScope",
		analysisID, clipKey, errorMsg,
	)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.from, userEmail, subject, body,
	)

	err := smtp.SendMail(addr, nil, n.from, []string{userEmail}, []byte(msg))
	if err != nil {
		n.logger.Error("failed to send failure notification email",
			zap.String("to", userEmail),
			zap.String("analysis_id", analysisID),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("failure notification email sent",
		zap.String("to", userEmail),
		zap.String("analysis_id", analysisID),
	)
	return nil
}
