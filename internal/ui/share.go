package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chousei/internal/session"
)

func (a *App) voteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote [schedule] [slot] [ok|ng]",
		Short: "Mark a slot OK or NG",
		Long: `Record your vote on one slot. Votes are kept locally per schedule
and included the next time you answer or share.

Respondents who only have the link pass the link each time.`,
		Example: `  chousei vote "https://chousei.app/?id=...&events=..." 9a2b ok --name=Bob
  chousei vote 3f1c... 9a2b ng`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := parseVote(args[2])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			sess, _, err := a.open(ctx, args[0], false)
			if err != nil {
				return err
			}
			s, err := findSlot(sess.Editor().Slots(), args[1])
			if err != nil {
				return err
			}
			if err := sess.Vote(ctx, s.ID, ok); err != nil {
				return friendly(err)
			}

			mark := formatOK("OK")
			if !ok {
				mark = formatNG("NG")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s voted %s on %s (%s %s)\n",
				sess.Actor(), mark, s.Title, s.Start.Format("Mon Jan 2"), s.Start.Format("15:04"))
			return nil
		},
	}
	return cmd
}

func parseVote(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ok", "yes", "y", "o":
		return true, nil
	case "ng", "no", "n", "x":
		return false, nil
	default:
		return false, fmt.Errorf("vote must be ok or ng, got %q", s)
	}
}

func (a *App) shareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share [schedule]",
		Short: "Build the share link and copy it",
		Long: `Build a link carrying the slots you proposed plus every slot that
reached quorum among the respondents seen so far. You are marked OK on
each shared slot and the result replaces the local history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := a.open(ctx, args[0], false)
			if err != nil {
				return err
			}
			link, err := sess.Share(ctx)
			if err != nil {
				return friendly(err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, formatLink(link))
			printStatus(w, sess)
			return nil
		},
	}
}

func (a *App) answerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "answer [link]",
		Short: "Send your answers back to the creator",
		Long: `Build an answer link with the slots you marked OK. Slots you have
not voted on count as OK. Also prints a home link that reopens the
schedule without resending answers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := a.open(ctx, args[0], false)
			if err != nil {
				return err
			}
			answer, home, err := sess.Answer(ctx)
			if err != nil {
				return friendly(err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, formatLink(answer))
			fmt.Fprintf(w, "%s %s\n", formatMuted("home:"), home)
			printStatus(w, sess)
			return nil
		},
	}
}

func printStatus(w io.Writer, sess *session.Session) {
	switch st := sess.Status(); st {
	case session.StatusCopied:
		fmt.Fprintln(w, formatOK(st))
	case "":
	default:
		fmt.Fprintln(w, formatMuted(st))
	}
}
