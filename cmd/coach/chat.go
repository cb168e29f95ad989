package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"chart-coach-be/internal/bootstrap"
	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/pkg/apperror"
	"chart-coach-be/internal/service"
	"chart-coach-be/pkg/coach/resolver"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	promptColor = color.New(color.FgCyan, color.Bold)
	coachColor  = color.New(color.FgGreen)
	userColor   = color.New(color.FgCyan)
	errColor    = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)
)

func newChatCmd(flags *globalFlags) *cobra.Command {
	var (
		mode    string
		session string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive coaching session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			core, err := openCore(ctx, flags)
			if err != nil {
				return err
			}
			defer core.Close()

			r, err := newREPL(core, cmd.OutOrStdout(), entity.ResponseMode(mode))
			if err != nil {
				return err
			}
			if session != "" {
				if err := r.switchTo(ctx, session); err != nil {
					return err
				}
			}
			return r.run(ctx, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(entity.ResponseModeTLDR), "reply mode: tldr or full")
	cmd.Flags().StringVarP(&session, "session", "s", "", "session id to resume")
	return cmd
}

// repl is the terminal chat client. Turns block until the coach replies.
type repl struct {
	core   *bootstrap.Core
	out    io.Writer
	mode   entity.ResponseMode
	listed []*entity.ChatSession
}

func newREPL(core *bootstrap.Core, out io.Writer, mode entity.ResponseMode) (*repl, error) {
	mode, err := resolver.NormalizeMode(mode)
	if err != nil {
		return nil, err
	}
	return &repl{core: core, out: out, mode: mode}, nil
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	active, err := r.core.Registry.Active(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Chart coach. Session %q, mode %s. Type /help for commands.\n", active.Title, r.mode)

	scanner := bufio.NewScanner(in)
	for {
		promptColor.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		cmd, ok, err := parseCommand(scanner.Text())
		if err != nil {
			errColor.Fprintln(r.out, err)
			continue
		}
		if !ok {
			continue
		}
		if cmd.Kind == cmdQuit {
			return nil
		}

		if err := r.handle(ctx, cmd); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.printError(err)
		}
	}
}

func (r *repl) handle(ctx context.Context, cmd command) error {
	switch cmd.Kind {
	case cmdText:
		return r.turn(ctx, func(id uuid.UUID) (*service.Turn, error) {
			return r.core.ConversationService.SubmitText(ctx, id, cmd.Arg, r.mode)
		})
	case cmdScenario:
		return r.turn(ctx, func(id uuid.UUID) (*service.Turn, error) {
			return r.core.ConversationService.SubmitScenario(ctx, id, cmd.Arg, r.mode)
		})
	case cmdImage:
		data, err := os.ReadFile(cmd.Arg)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		return r.turn(ctx, func(id uuid.UUID) (*service.Turn, error) {
			return r.core.ConversationService.SubmitImage(ctx, id, data, filepath.Base(cmd.Arg), r.mode)
		})
	case cmdNew:
		session, err := r.core.Registry.CreateSession(ctx, cmd.Arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Started %q\n", session.Title)
	case cmdList:
		return r.list(ctx)
	case cmdSwitch:
		return r.switchTo(ctx, cmd.Arg)
	case cmdRename:
		active, err := r.core.Registry.Active(ctx)
		if err != nil {
			return err
		}
		session, err := r.core.Registry.RenameSession(ctx, active.Id, cmd.Arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Renamed to %q\n", session.Title)
	case cmdDelete:
		active, err := r.core.Registry.Active(ctx)
		if err != nil {
			return err
		}
		next, err := r.core.Registry.DeleteSession(ctx, active.Id)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Deleted %q. Now in %q\n", active.Title, next.Title)
	case cmdMode:
		mode, err := resolver.NormalizeMode(entity.ResponseMode(strings.ToLower(cmd.Arg)))
		if err != nil {
			return err
		}
		r.mode = mode
		fmt.Fprintf(r.out, "Mode set to %s\n", mode)
	case cmdScenarios:
		writeScenarios(r.out, r.core.ConversationService)
	case cmdHistory:
		return r.history(ctx)
	case cmdStatus:
		active, err := r.core.Registry.Active(ctx)
		if err != nil {
			return err
		}
		state, err := r.core.ConversationService.State(ctx, active.Id)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "%q (%s): %s, mode %s\n", active.Title, active.Id, state, r.mode)
	case cmdHelp:
		fmt.Fprint(r.out, helpText())
	}
	return nil
}

func (r *repl) turn(ctx context.Context, submit func(uuid.UUID) (*service.Turn, error)) error {
	active, err := r.core.Registry.Active(ctx)
	if err != nil {
		return err
	}

	dimColor.Fprintln(r.out, "coach is thinking...")
	turn, err := submit(active.Id)
	if err != nil {
		var turnErr *service.TurnError
		if errors.As(err, &turnErr) {
			dimColor.Fprintln(r.out, "(your message was saved)")
		}
		return err
	}

	r.printMessage(turn.CoachMessage)
	return nil
}

func (r *repl) list(ctx context.Context) error {
	sessions, err := r.core.Registry.ListSessions(ctx)
	if err != nil {
		return err
	}
	r.listed = sessions

	if len(sessions) == 0 {
		fmt.Fprintln(r.out, "No sessions.")
		return nil
	}

	activeID := r.core.Registry.ActiveID()
	for i, s := range sessions {
		marker := " "
		if s.Id == activeID {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %2d. %-32s %s\n", marker, i+1, s.Title, s.CreatedAt.Local().Format("Jan 2 15:04"))
	}
	return nil
}

// switchTo accepts a number from the last /list or a session id.
func (r *repl) switchTo(ctx context.Context, arg string) error {
	var id uuid.UUID
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(r.listed) {
			return apperror.Validation("no session #%d in the last /list", n)
		}
		id = r.listed[n-1].Id
	} else {
		parsed, err := uuid.Parse(arg)
		if err != nil {
			return apperror.Validation("%q is neither a list number nor a session id", arg)
		}
		id = parsed
	}

	session, err := r.core.Registry.SelectSession(ctx, id)
	if err != nil {
		return err
	}
	if session.Id != id {
		fmt.Fprintf(r.out, "Session not found, switched to %q\n", session.Title)
		return nil
	}
	fmt.Fprintf(r.out, "Switched to %q\n", session.Title)
	return nil
}

func (r *repl) history(ctx context.Context) error {
	active, err := r.core.Registry.Active(ctx)
	if err != nil {
		return err
	}
	messages, err := r.core.Gateway.ListMessages(ctx, active.Id)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Fprintln(r.out, "No messages yet.")
		return nil
	}
	for _, m := range messages {
		r.printMessage(m)
	}
	return nil
}

func (r *repl) printMessage(m *entity.ChatMessage) {
	stamp := m.Timestamp.Local().Format("15:04:05")
	if m.Role == entity.MessageRoleUser {
		content := m.Content
		if m.Type == entity.MessageTypeImage {
			content = "[chart] " + content
		}
		userColor.Fprintf(r.out, "[%s] you> %s\n", stamp, content)
		return
	}

	label := "coach"
	if m.Mode != "" {
		label = fmt.Sprintf("coach (%s)", m.Mode)
	}
	coachColor.Fprintf(r.out, "[%s] %s> %s\n", stamp, label, m.Content)
}

func (r *repl) printError(err error) {
	kind := apperror.KindOf(err)
	if kind == "" {
		errColor.Fprintln(r.out, err)
		return
	}
	errColor.Fprintf(r.out, "%s: %s\n", kind, apperror.Message(err))
}
