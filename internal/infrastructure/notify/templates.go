package notify

import (
	"errors"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"juryboard/internal/errs"
	"juryboard/internal/ports"
)

// Template is one per-scope message template. Placeholders of the form
// {{key}} are substituted from the notification context.
type Template struct {
	Subject string `toml:"subject"`
	Body    string `toml:"body"`
}

type templatesFile struct {
	Templates map[string]Template `toml:"templates"`
}

// DefaultTemplates cover every notification kind; a templates file
// overrides per kind.
func DefaultTemplates() map[ports.NotificationKind]Template {
	return map[ports.NotificationKind]Template{
		ports.NotifyIndividualReset: {
			Subject: "Your evaluation was reset",
			Body:    "Your evaluation for candidate {{candidate_id}} was reset. Reason: {{reason}}",
		},
		ports.NotifyCandidateReset: {
			Subject: "Evaluations for a candidate were reset",
			Body:    "All evaluations for candidate {{candidate_id}} were reset. Reason: {{reason}}",
		},
		ports.NotifyReviewerReset: {
			Subject: "Your evaluations were reset",
			Body:    "All of your evaluations were reset. Reason: {{reason}}",
		},
		ports.NotifyPhaseAdvanced: {
			Subject: "Voting round advanced",
			Body:    "Voting moved from round {{old_round}} to {{new_round}}.",
		},
		ports.NotifyFullSystemReset: {
			Subject: "All evaluations were reset",
			Body:    "A full system reset was performed. Reason: {{reason}}",
		},
	}
}

// LoadTemplates merges a toml templates file over the defaults. A missing
// path returns the defaults unchanged.
func LoadTemplates(path string) (map[ports.NotificationKind]Template, error) {
	templates := DefaultTemplates()

	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return templates, nil
	}

	raw, err := os.ReadFile(trimmed)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return templates, nil
		}
		return nil, errs.Wrapf(err, "read templates file %q", trimmed)
	}

	var file templatesFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, errs.Wrapf(err, "parse templates file %q", trimmed)
	}

	for kind, tpl := range file.Templates {
		if strings.TrimSpace(tpl.Subject) == "" && strings.TrimSpace(tpl.Body) == "" {
			continue
		}
		templates[ports.NotificationKind(kind)] = tpl
	}

	return templates, nil
}

// Render substitutes {{key}} placeholders from context.
func (t Template) Render(templateContext map[string]string) (subject string, body string) {
	subject = t.Subject
	body = t.Body
	for key, value := range templateContext {
		placeholder := "{{" + key + "}}"
		subject = strings.ReplaceAll(subject, placeholder, value)
		body = strings.ReplaceAll(body, placeholder, value)
	}
	return subject, body
}
