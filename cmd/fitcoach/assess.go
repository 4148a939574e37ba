package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ashureev/fitcoach/internal/auth"
	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/session"
	"github.com/ashureev/fitcoach/internal/tui"
)

func assessCmd(opts *globalOptions) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run the assessment wizard and chat about your plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The terminal belongs to the UI, so logs go to --log-file or nowhere.
			logger, closeLog, err := opts.newLogger(io.Discard)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx := cmd.Context()
			svc, err := opts.newAssistant(ctx, logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			sess := session.New(svc, logger)
			sess.Login(localUser(name, email))

			p := tea.NewProgram(tui.New(ctx, sess, svc.AssistantName()), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run terminal ui: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your name (defaults to $USER)")
	cmd.Flags().StringVar(&email, "email", "", "Your email (optional)")
	return cmd
}

// localUser builds the terminal user. The name falls back to the email
// local part and then to $USER.
func localUser(name, email string) domain.User {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if name == "" && email != "" {
		name = auth.NameFromEmail(email)
	}
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "there"
	}
	return domain.User{Name: name, Email: email}
}
