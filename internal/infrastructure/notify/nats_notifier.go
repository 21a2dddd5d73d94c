package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"

	"juryboard/internal/bootstrap/config"
	"juryboard/internal/bootstrap/logging"
	"juryboard/internal/errs"
	"juryboard/internal/ports"
)

// NATSNotifier publishes notifications and reset events to NATS subjects.
// Publishing is fire-and-forget: delivery failures are the caller's to log,
// never to retry here.
type NATSNotifier struct {
	conn          *nats.Conn
	subjectPrefix string
	templates     map[ports.NotificationKind]Template
}

var _ ports.Notifier = (*NATSNotifier)(nil)

func NewNATSNotifier(ctx context.Context, cfg config.NATSConfig, templates map[ports.NotificationKind]Template) (*NATSNotifier, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("juryboard"))
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}

	prefix := strings.TrimSpace(cfg.SubjectPrefix)
	if prefix == "" {
		prefix = "juryboard"
	}

	if templates == nil {
		templates = DefaultTemplates()
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "notify.nats")),
		"nats notifier connected",
		slog.String("url", cfg.URL),
		slog.String("subject_prefix", prefix),
	)

	return &NATSNotifier{
		conn:          conn,
		subjectPrefix: prefix,
		templates:     templates,
	}, nil
}

type notifyMessage struct {
	Kind       string            `json:"kind"`
	Recipients []uint64          `json:"recipients"`
	Subject    string            `json:"subject"`
	Body       string            `json:"body"`
	Context    map[string]string `json:"context,omitempty"`
}

func (n *NATSNotifier) Notify(ctx context.Context, kind ports.NotificationKind, recipients []uint64, templateContext map[string]string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if len(recipients) == 0 {
		return nil
	}

	tpl, ok := n.templates[kind]
	if !ok {
		return errs.Wrapf(errors.New("no template"), "notification kind %q", kind)
	}
	subject, body := tpl.Render(templateContext)

	payload, err := json.Marshal(notifyMessage{
		Kind:       string(kind),
		Recipients: recipients,
		Subject:    subject,
		Body:       body,
		Context:    templateContext,
	})
	if err != nil {
		return errs.Wrap(err, "marshal notification")
	}

	if err := n.conn.Publish(n.subjectPrefix+".notify."+string(kind), payload); err != nil {
		return errs.Wrap(err, "publish notification")
	}
	return nil
}

func (n *NATSNotifier) PublishResetEvent(ctx context.Context, event ports.ResetEvent) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "marshal reset event")
	}

	if err := n.conn.Publish(n.subjectPrefix+".reset.completed", payload); err != nil {
		return errs.Wrap(err, "publish reset event")
	}
	return nil
}

func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

// NoopNotifier is used when nats is disabled; notifications are dropped
// after a debug-level trace.
type NoopNotifier struct{}

var _ ports.Notifier = (*NoopNotifier)(nil)

func (NoopNotifier) Notify(ctx context.Context, kind ports.NotificationKind, recipients []uint64, _ map[string]string) error {
	logging.Logger(ctx).Debug("notification dropped (nats disabled)",
		slog.String("kind", string(kind)),
		slog.Int("recipients", len(recipients)),
	)
	return nil
}

func (NoopNotifier) PublishResetEvent(ctx context.Context, event ports.ResetEvent) error {
	logging.Logger(ctx).Debug("reset event dropped (nats disabled)",
		slog.String("scope", event.Scope),
	)
	return nil
}
