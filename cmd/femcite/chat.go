// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/femcite/internal/pipeline"
	"github.com/pdiddy/femcite/internal/server"
	"github.com/pdiddy/femcite/internal/session"
	"github.com/pdiddy/femcite/pkg/types"
)

const chatHelp = `Type a research question and press Enter.
  /style APA|MLA|Chicago   change the reference list style
  /session                 print the session id
  /help                    show this help
  /quit                    leave the chat`

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively in one session",
	Long: `Chat keeps a session open across questions. Asking the same question
twice shows the previous answer without contacting any service. With --db the
session is stored in SQLite and can be resumed with --session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		styleFlag, _ := cmd.Flags().GetString("style")
		style, err := types.ParseStyle(styleFlag)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd, zap.WarnLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		mgr, closeStore, err := openManager(cmd, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		id, _ := cmd.Flags().GetString("session")
		return runChat(cmd.Context(), os.Stdin, os.Stdout, mgr, a.orchestrator, id, style)
	},
}

func init() {
	chatCmd.Flags().String("style", string(types.StyleAPA), "initial reference list style")
	chatCmd.Flags().String("session", "", "resume a stored session by id")
	chatCmd.Flags().String("db", "", "SQLite file for session storage (default from server.db_path)")

	rootCmd.AddCommand(chatCmd)
}

// openManager returns a session manager backed by SQLite when a database
// path is configured, otherwise an in-memory one.
func openManager(cmd *cobra.Command, cfg types.Config, logger *zap.Logger) (*session.Manager, func(), error) {
	path := cfg.Server.DBPath
	if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
		path = f.Value.String()
	}
	if path == "" {
		return session.NewManager(nil, logger.Named("session")), func() {}, nil
	}

	store, err := session.NewStore(path)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing session store", zap.Error(err))
		}
	}
	return session.NewManager(store, logger.Named("session")), closeStore, nil
}

// runChat reads questions from in until EOF or /quit and writes each result
// to out. An empty id starts a new session.
func runChat(ctx context.Context, in io.Reader, out io.Writer, mgr *session.Manager, sub server.Submitter, id string, style types.Style) error {
	if id == "" {
		st, err := mgr.Create(ctx)
		if err != nil {
			return err
		}
		id = st.ID
	} else {
		st, err := mgr.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("resuming session %s: %w", id, err)
		}
		if st.Style != "" {
			style = st.Style
		}
	}

	fmt.Fprintf(out, "femcite session %s (%s). /help for commands.\n", id, style.Label())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "/") {
			cmd, arg, _ := strings.Cut(line, " ")
			switch cmd {
			case "/quit", "/exit":
				return nil
			case "/help":
				fmt.Fprintln(out, chatHelp)
			case "/session":
				fmt.Fprintln(out, id)
			case "/style":
				s, err := types.ParseStyle(strings.TrimSpace(arg))
				if err != nil {
					fmt.Fprintln(out, err)
					continue
				}
				style = s
				fmt.Fprintf(out, "Using %s.\n", style.Label())
			default:
				fmt.Fprintf(out, "unknown command %s\n", cmd)
			}
			continue
		}

		var res pipeline.Result
		err := mgr.With(ctx, id, func(st *session.State) error {
			var err error
			res, err = sub.Submit(ctx, st, line, style)
			return err
		})
		if err != nil {
			var qe *pipeline.QueryError
			if errors.As(err, &qe) {
				fmt.Fprintln(out, qe.Notice())
				continue
			}
			return err
		}
		printResult(out, res)
	}
}
