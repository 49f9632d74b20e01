package auth

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Prompt is what the user has to act on to finish a sign-in.
//
// Browser sign-ins carry only URL. Device sign-ins also carry the code to type at URL.
type Prompt struct {
	Method    Method
	URL       string
	UserCode  string
	ExpiresAt time.Time
}

// Prompter shows a [Prompt] to the user.
type Prompter interface {
	Prompt(ctx context.Context, p Prompt) error
}

// PrompterFunc adapts a function to [Prompter].
type PrompterFunc func(ctx context.Context, p Prompt) error

func (f PrompterFunc) Prompt(ctx context.Context, p Prompt) error {
	return f(ctx, p)
}

// WriterPrompter prints prompts as plain text.
type WriterPrompter struct {
	W io.Writer
}

func (w WriterPrompter) Prompt(_ context.Context, p Prompt) error {
	var err error
	if p.UserCode == "" {
		_, err = fmt.Fprintf(w.W, "→ Open this URL to sign in:\n%s\n\n", p.URL)
	} else {
		_, err = fmt.Fprintf(w.W, "→ Visit %s and enter the code: %s\n", p.URL, p.UserCode)
		if err == nil && !p.ExpiresAt.IsZero() {
			_, err = fmt.Fprintf(w.W, "  The code expires at %s\n\n", p.ExpiresAt.Local().Format(time.Kitchen))
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write prompt: %w", err)
	}
	return nil
}
