package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ayusman/aircanvas/internal/store"
)

func newSessionsCmd(opts *options, logger *log.Logger) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List journaled sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openJournal(cmd, opts, logger)
			if err != nil {
				return err
			}
			defer st.Close()
			return listSessions(cmd.OutOrStdout(), st, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum sessions to list (0 for all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show the events of one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openJournal(cmd, opts, logger)
			if err != nil {
				return err
			}
			defer st.Close()
			return showSession(cmd.OutOrStdout(), st, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a session and its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openJournal(cmd, opts, logger)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Sessions().Delete(args[0]); err != nil {
				return sessionError(args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleOK.Render("deleted")+" "+styleID.Render(args[0]))
			return nil
		},
	})

	return cmd
}

func openJournal(cmd *cobra.Command, opts *options, logger *log.Logger) (*store.Store, error) {
	cfg, err := loadConfig(cmd, opts, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Path == "" {
		return nil, errors.New("journaling is disabled (store.path is empty)")
	}
	return store.New(cfg.Store.Path)
}

func listSessions(w io.Writer, st *store.Store, limit int) error {
	sessions, err := st.Sessions().List(limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, styleLabel.Render(iconInfo+" no sessions in "+st.Path()))
		return nil
	}

	printTitle(w, "%d session(s) in %s", len(sessions), st.Path())
	for _, s := range sessions {
		counts, err := st.Events().CountByKind(s.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s %s\n",
			styleID.Render(s.ID),
			s.StartedAt.Format(time.DateTime),
			styleLabel.Render(fmt.Sprintf("%dx%d %s", s.Width, s.Height, sessionDuration(s))),
		)
		printDetail(w, "%d strokes, %d colour changes, %d clears, %d voice %s %s",
			counts[store.EventStroke], counts[store.EventColour], counts[store.EventClear],
			counts[store.EventVoice], iconArrow, endReason(s))
	}
	return nil
}

func showSession(w io.Writer, st *store.Store, id string) error {
	s, err := st.Sessions().GetByID(id)
	if err != nil {
		return sessionError(id, err)
	}
	events, err := st.Events().ListBySession(id)
	if err != nil {
		return err
	}

	printTitle(w, "session %s", s.ID)
	printDetail(w, "started %s, %s, %s", s.StartedAt.Format(time.DateTime), sessionDuration(*s), endReason(*s))
	for _, e := range events {
		offset := e.CreatedAt.Sub(s.StartedAt).Round(time.Millisecond)
		fmt.Fprintf(w, "%10s  %-7s %s\n", offset, styleLabel.Render(string(e.Kind)), e.Detail)
	}
	return nil
}

func sessionError(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no session %q", id)
	}
	return err
}

func sessionDuration(s store.Session) string {
	if s.EndedAt.IsZero() {
		return "running"
	}
	return s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
}

func endReason(s store.Session) string {
	if s.EndReason == "" {
		return "not ended"
	}
	return s.EndReason
}
