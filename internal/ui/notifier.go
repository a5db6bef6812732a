package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/rileyhilliard/hublink/internal/connect"
	"github.com/rileyhilliard/hublink/internal/errors"
)

// Tone selects how a message is styled.
type Tone int

const (
	ToneSuccess Tone = iota
	ToneNeutral
	ToneWarning
	ToneError
)

// Message is the user-facing rendering of an outcome.
type Message struct {
	Tone   Tone
	Title  string
	Detail string
}

// Generic failure text shown for every error without a dedicated message.
const failureTitle = "Could not connect the community. Please try again."

// OutcomeMessage maps an outcome to what the user sees.
func OutcomeMessage(o connect.Outcome) Message {
	name := o.Target.DisplayName()

	switch code := o.Code(); code {
	case "":
		if o.AlreadyConnected {
			return Message{Tone: ToneNeutral, Title: fmt.Sprintf("%q is already connected", name)}
		}
		return Message{
			Tone:   ToneSuccess,
			Title:  fmt.Sprintf("%q connected", name),
			Detail: "The bot now receives messages from this community",
		}
	case errors.ErrPermissionDenied:
		return Message{Tone: ToneNeutral, Title: "Connection cancelled: access was not granted"}
	case errors.ErrAlreadyRunning:
		return Message{Tone: ToneNeutral, Title: "A connection is already in progress"}
	case errors.ErrLimit:
		return Message{Tone: ToneWarning, Title: headline(o.Err, "Connection limit reached"), Detail: suggestion(o.Err)}
	case errors.ErrAcquisitionTimeout, errors.ErrAcquisitionFailure, errors.ErrPersistence,
		errors.ErrTransientConfig, errors.ErrConfig, errors.ErrRemote, errors.ErrUnknown:
		return Message{Tone: ToneError, Title: failureTitle, Detail: suggestion(o.Err)}
	default:
		return Message{Tone: ToneError, Title: failureTitle, Detail: suggestion(o.Err)}
	}
}

func headline(err error, fallback string) string {
	var e *errors.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

func suggestion(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Suggestion
	}
	return ""
}

// Render styles m as one or two lines.
func (m Message) Render() string {
	var symbol string
	switch m.Tone {
	case ToneSuccess:
		symbol = SuccessStyle().Render(SymbolSuccess)
	case ToneWarning:
		symbol = WarningStyle().Render(SymbolWarning)
	case ToneError:
		symbol = ErrorStyle().Render(SymbolFail)
	default:
		symbol = MutedStyle().Render(SymbolSkipped)
	}

	var b strings.Builder
	b.WriteString(symbol + " " + m.Title + "\n")
	if m.Detail != "" {
		b.WriteString("  " + MutedStyle().Render(m.Detail) + "\n")
	}
	return b.String()
}

// Notifier prints outcomes to a writer. It implements connect.Notifier.
type Notifier struct {
	out io.Writer
}

// NewNotifier creates a Notifier writing to out.
func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

// Notify implements connect.Notifier.
func (n *Notifier) Notify(o connect.Outcome) {
	fmt.Fprint(n.out, OutcomeMessage(o).Render())
}
