package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/nerrad567/apiconsole/internal/console"
)

const shellPrompt = "apiconsole> "

const shellHelp = `Commands:
  url URL | key KEY | token TOKEN    set the connection (no argument clears key/token)
  config                             show the connection
  test                               test the connection and probe methods
  connect | refresh | disconnect     manage the connection
  fetch                              reload the rows
  show [raw]                         print the rows (or the raw body)
  methods                            print the probe results
  create KEY=VALUE[:number]...       POST a new record (quote values with spaces)
  update INDEX KEY=VALUE...          PUT the row at INDEX with edits
  delete INDEX                       DELETE the row at INDEX
  help | quit`

func newShellCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive console keeping one connection across commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, _, err := opts.newSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			sh := &shell{
				session: session,
				format:  opts.format(),
				out:     cmd.OutOrStdout(),
				errOut:  cmd.ErrOrStderr(),
			}
			return sh.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

// shell is a line-oriented REPL over one console session.
type shell struct {
	session *console.Session
	format  outputFormat
	out     io.Writer
	errOut  io.Writer
}

// run reads commands until EOF, quit or context cancellation. Command
// failures are reported and the loop continues.
func (sh *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, shellPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		args, err := splitArgs(scanner.Text())
		if err != nil {
			fmt.Fprintf(sh.errOut, "error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			return nil
		}
		if err := sh.exec(ctx, args[0], args[1:]); err != nil {
			fmt.Fprintf(sh.errOut, "error: %v\n", err)
		}
	}
}

func (sh *shell) exec(ctx context.Context, name string, args []string) error {
	s := sh.session

	switch name {
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
		return nil
	case "url", "key", "token":
		sh.setConnection(name, strings.Join(args, " "))
		return nil
	case "config":
		cfg := s.Config()
		fmt.Fprintf(sh.out, "url: %s\napi key: %s\ntoken: %s\nconnected: %t\n",
			cfg.URL, mask(cfg.APIKey), mask(cfg.Token), s.Connected())
		return nil
	case "test":
		if err := s.TestConnection(ctx); err != nil {
			return quiet(err)
		}
		return printMethods(sh.out, sh.format, s.Methods())
	case "connect":
		if err := s.Connect(ctx); err != nil {
			return quiet(err)
		}
		return printRows(sh.out, sh.format, s.Rows())
	case "refresh":
		if err := s.Refresh(ctx); err != nil {
			return quiet(err)
		}
		return printRows(sh.out, sh.format, s.Rows())
	case "disconnect":
		return s.Disconnect()
	case "fetch":
		if err := s.Fetch(ctx); err != nil {
			return quiet(err)
		}
		return printRows(sh.out, sh.format, s.Rows())
	case "show":
		if len(args) > 0 && args[0] == "raw" {
			return printJSON(sh.out, s.Raw())
		}
		return printRows(sh.out, sh.format, s.Rows())
	case "methods":
		return printMethods(sh.out, sh.format, s.Methods())
	case "create":
		fields, err := parseFields(args)
		if err != nil {
			return err
		}
		if err := s.Create(ctx, fields); err != nil {
			return quiet(err)
		}
		return printRows(sh.out, sh.format, s.Rows())
	case "update":
		if len(args) < 1 {
			return errors.New("usage: update INDEX KEY=VALUE...")
		}
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		edits, err := parseFields(args[1:])
		if err != nil {
			return err
		}
		if err := s.Update(ctx, index, edits); err != nil {
			return quiet(err)
		}
		return printRows(sh.out, sh.format, s.Rows())
	case "delete":
		if len(args) != 1 {
			return errors.New("usage: delete INDEX")
		}
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		if err := s.Delete(ctx, index); err != nil {
			return quiet(err)
		}
		return printRows(sh.out, sh.format, s.Rows())
	default:
		return fmt.Errorf("unknown command %q (try help)", name)
	}
}

// setConnection updates one connection setting. Changing the target
// disconnects, since rows and probe results belong to the old one.
func (sh *shell) setConnection(name, value string) {
	cfg := sh.session.Config()
	switch name {
	case "url":
		cfg.URL = value
	case "key":
		cfg.APIKey = value
	case "token":
		cfg.Token = value
	}
	if name == "url" && sh.session.Connected() {
		sh.session.Disconnect() //nolint:errcheck // only fails when busy; the shell runs one command at a time
	}
	sh.session.SetConfig(cfg)
}

// quiet drops errors that the session already reported as notices.
func quiet(error) error {
	return nil
}

// mask hides all but the last four characters of a secret.
func mask(secret string) string {
	if secret == "" {
		return "(none)"
	}
	runes := []rune(secret)
	if len(runes) <= 4 {
		return "****"
	}
	return "****" + string(runes[len(runes)-4:])
}

// splitArgs splits a command line on whitespace. Single or double quotes
// group text containing spaces, so name="desk lamp" is one argument; a
// backslash inside double quotes escapes the next character.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote == '"' && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case unicode.IsSpace(r):
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}

	if quote != 0 || escaped {
		return nil, errors.New("unterminated quote")
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
