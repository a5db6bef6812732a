package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/remote"
)

// ConsentPrompt asks the user to grant the requested scope before a
// credential is issued. A declined or aborted prompt is a refusal.
func ConsentPrompt(name string, input io.Reader, output io.Writer) remote.ConsentFunc {
	return func(ctx context.Context, targetID int64, scope string) (bool, error) {
		allow := true
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Allow hublink to manage %q?", name)).
					Description(consentDescription(targetID, scope)).
					Affirmative("Allow").
					Negative("Deny").
					Value(&allow),
			),
		).WithInput(input).WithOutput(output)

		if err := form.RunWithContext(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return false, nil
			}
			return false, err
		}
		return allow, nil
	}
}

func consentDescription(targetID int64, scope string) string {
	perms := strings.Split(scope, ",")
	for i, p := range perms {
		perms[i] = "  - " + strings.TrimSpace(p)
	}
	return fmt.Sprintf("Community %d will grant:\n%s", targetID, strings.Join(perms, "\n"))
}
