// Package emaildraft produces subject/body pairs for outbound manager
// emails. A single model call does the writing; a fixed per-intent template
// takes over whenever the call or its JSON output fails.
package emaildraft

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Jmurp11/hockey-team-scheduler/llm"
	"github.com/Jmurp11/hockey-team-scheduler/store"
)

// Intent selects the tone and template of a draft.
type Intent string

const (
	IntentSchedule   Intent = "schedule"
	IntentReschedule Intent = "reschedule"
	IntentCancel     Intent = "cancel"
	IntentGeneral    Intent = "general"
)

// Request carries everything the generator needs for one draft.
type Request struct {
	Intent          Intent
	Sender          *store.UserContext
	RecipientName   string
	RecipientTeam   string
	ProposedDate    string
	ProposedTime    string
	ExistingContext string
}

// Draft is a complete outbound email proposal. The caller may edit Subject
// and Body before confirming the send; Signature is appended at send time.
type Draft struct {
	To        string `json:"to,omitempty"`
	ToName    string `json:"to_name,omitempty"`
	ToTeam    string `json:"to_team,omitempty"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Signature string `json:"signature"`
	Intent    Intent `json:"intent"`
	GameID    string `json:"game_id,omitempty"`
}

var draftSchema = llm.JSONSchema{
	"type": "object",
	"properties": map[string]any{
		"subject": map[string]any{"type": "string"},
		"body":    map[string]any{"type": "string"},
	},
	"required":             []string{"subject", "body"},
	"additionalProperties": false,
}

// Generator writes drafts with a language model.
type Generator struct {
	model llm.LanguageModel
}

func NewGenerator(model llm.LanguageModel) *Generator {
	return &Generator{model: model}
}

// Generate returns a subject/body pair for the request. It never fails: any
// model or parse problem falls back to the intent's fixed template.
func (g *Generator) Generate(ctx context.Context, req Request) (subject, body string) {
	prompt := buildPrompt(req)
	description := "An email draft with a subject line and a body."
	format := llm.NewResponseFormatJSON("email_draft", &description, &draftSchema)

	response, err := g.model.Generate(ctx, &llm.LanguageModelInput{
		Messages: []llm.Message{
			llm.NewUserMessage(llm.NewTextPart(prompt)),
		},
		ResponseFormat: &format,
	})
	if err != nil {
		log.Printf("emaildraft: model call failed, using template: %v", err)
		return fallbackTemplate(req)
	}

	parsed := gjson.Parse(response.Text())
	subject = strings.TrimSpace(parsed.Get("subject").String())
	body = strings.TrimSpace(parsed.Get("body").String())
	if subject == "" || body == "" {
		log.Printf("emaildraft: malformed draft JSON, using template")
		return fallbackTemplate(req)
	}
	return subject, body
}

func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Write a brief, collegial email from one youth hockey team manager to another.\n")
	fmt.Fprintf(&b, "Purpose: %s.\n", intentPurpose(req.Intent))
	fmt.Fprintf(&b, "Open with %s.\n", greetingInstruction(req.RecipientName))

	if req.Sender != nil {
		if req.Sender.TeamName != "" {
			fmt.Fprintf(&b, "The sender manages %s.\n", req.Sender.TeamName)
		}
		if req.Sender.AssociationName != "" {
			fmt.Fprintf(&b, "The sender's team plays in %s.\n", req.Sender.AssociationName)
		}
	}
	if req.RecipientTeam != "" {
		fmt.Fprintf(&b, "The recipient manages %s.\n", req.RecipientTeam)
	}
	if req.ProposedDate != "" {
		fmt.Fprintf(&b, "Proposed date: %s.\n", req.ProposedDate)
	}
	if req.ProposedTime != "" {
		fmt.Fprintf(&b, "Proposed time: %s. Write times in 12-hour form with AM/PM.\n", FormatTime12Hour(req.ProposedTime))
	}
	if req.ExistingContext != "" {
		fmt.Fprintf(&b, "Context: %s\n", req.ExistingContext)
	}

	b.WriteString("Do not include a signature, sign-off, or the sender's name at the end; it is added separately.\n")
	b.WriteString("Respond with a JSON object with keys \"subject\" and \"body\".")
	return b.String()
}

func intentPurpose(intent Intent) string {
	switch intent {
	case IntentSchedule:
		return "propose scheduling a game between the two teams"
	case IntentReschedule:
		return "ask to reschedule an existing game"
	case IntentCancel:
		return "cancel an existing game and apologize for the inconvenience"
	default:
		return "reach out about coordinating between the two teams"
	}
}

func greetingInstruction(recipientName string) string {
	if recipientName != "" {
		return fmt.Sprintf("%q", "Hi "+firstName(recipientName)+",")
	}
	return `"Hello,"`
}

// fallbackTemplate returns a fixed draft for the request's intent. The
// greeting follows the same rule the model is given.
func fallbackTemplate(req Request) (subject, body string) {
	greeting := "Hello,"
	if req.RecipientName != "" {
		greeting = "Hi " + firstName(req.RecipientName) + ","
	}

	team := "our team"
	if req.Sender != nil && req.Sender.TeamName != "" {
		team = req.Sender.TeamName
	}

	when := ""
	if req.ProposedDate != "" {
		when = " on " + req.ProposedDate
		if req.ProposedTime != "" {
			when += " at " + FormatTime12Hour(req.ProposedTime)
		}
	}

	switch req.Intent {
	case IntentSchedule:
		subject = fmt.Sprintf("Game with %s%s?", team, when)
		body = fmt.Sprintf("%s\n\nI manage %s and we're looking to schedule a game%s. Would your team be interested? Happy to work around your schedule.", greeting, team, when)
	case IntentReschedule:
		subject = fmt.Sprintf("Rescheduling our game with %s", team)
		body = fmt.Sprintf("%s\n\nSomething has come up on our end and we need to move our upcoming game. Could we find a new date%s that works for you?", greeting, when)
	case IntentCancel:
		subject = fmt.Sprintf("Canceling our game with %s", team)
		body = fmt.Sprintf("%s\n\nI'm sorry to say we have to cancel our upcoming game%s. Apologies for the inconvenience; we'd love to find another date later in the season.", greeting, when)
	default:
		subject = fmt.Sprintf("Reaching out from %s", team)
		body = fmt.Sprintf("%s\n\nI manage %s and wanted to get in touch about coordinating between our teams. Let me know a good time to connect.", greeting, team)
	}
	return subject, body
}

// Signature builds the deterministic sign-off appended below every body:
// "Best regards," followed by the sender's name, team, association, and
// phone, in that order, each only if present.
func Signature(u *store.UserContext) string {
	lines := []string{"Best regards,"}
	if u != nil {
		for _, field := range []string{u.Name, u.TeamName, u.AssociationName, u.Phone} {
			if field != "" {
				lines = append(lines, field)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// FormatTime12Hour converts a 24-hour "HH:MM" time to "H:MM AM/PM". Input
// that doesn't look like a clock time is returned unchanged.
func FormatTime12Hour(t string) string {
	parts := strings.SplitN(strings.TrimSpace(t), ":", 2)
	if len(parts) != 2 {
		return t
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return t
	}
	minute := parts[1]
	if len(minute) > 2 {
		minute = minute[:2]
	}

	suffix := "AM"
	displayHour := hour
	switch {
	case hour == 0:
		displayHour = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		displayHour = hour - 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%s %s", displayHour, minute, suffix)
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return full
	}
	return fields[0]
}
