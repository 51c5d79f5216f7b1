package cmd

import (
	"fmt"
	"time"

	"github.com/yzx9/aim/pkg/agenda"
	"github.com/yzx9/aim/pkg/ical"
	"github.com/yzx9/aim/pkg/storage"
	"github.com/yzx9/aim/pkg/terrors"
	"github.com/yzx9/aim/pkg/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(eventsCmd, todosCmd, agendaCmd)
	setEventsCmdFlags()
	setTodosCmdFlags()
	setAgendaCmdFlags()
}

var eventsCmd = &cobra.Command{
	Use:   "events [--days=<n=7>]",
	Short: "list upcoming events from the cache",
	Long: `events [--days=<n=7>]
  list cached events starting within the next n days`,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := cmd.Flags().GetInt("days")
		if err != nil {
			return err
		}
		if days < 1 {
			return fmt.Errorf("%w: %w: days must be positive, not '%d'", terrors.ErrArg, terrors.ErrValue, days)
		}
		s, err := openStorage()
		if err != nil {
			return err
		}
		defer s.Close()

		now := time.Now()
		items, err := s.ListEvents(now, now.AddDate(0, 0, days))
		if err != nil {
			return err
		}
		for _, it := range items {
			fmt.Println(formatEventItem(it))
		}
		return nil
	},
}

func setEventsCmdFlags() {
	eventsCmd.Flags().Int("days", 7, "window size in days")
}

var todosCmd = &cobra.Command{
	Use:   "todos [--all]",
	Short: "list open todos from the cache",
	Long: `todos [--all]
  list cached todos, soonest due first; --all includes finished ones`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := cmd.Flags().GetBool("all")
		if err != nil {
			return err
		}
		s, err := openStorage()
		if err != nil {
			return err
		}
		defer s.Close()

		items, err := s.ListTodos(all)
		if err != nil {
			return err
		}
		for _, it := range items {
			fmt.Println(formatTodoItem(it))
		}
		return nil
	},
}

func setTodosCmdFlags() {
	todosCmd.Flags().Bool("all", false, "include completed and cancelled todos")
}

var agendaCmd = &cobra.Command{
	Use:   "agenda [--days=<n=7>]",
	Short: "expand calendar files into a day-by-day agenda",
	Long: `agenda [--days=<n=7>]
  parse the .ics files of the calendar dir and list every occurrence
  in the window, recurrence rules included`,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := cmd.Flags().GetInt("days")
		if err != nil {
			return err
		}
		if days < 1 {
			return fmt.Errorf("%w: %w: days must be positive, not '%d'", terrors.ErrArg, terrors.ErrValue, days)
		}

		paths, err := lsCalendarFiles()
		if err != nil {
			return err
		}
		var cals []*ical.ICalendar
		for _, path := range paths {
			src, err := readSource(path)
			if err != nil {
				return err
			}
			parsed, _ := parseSource(path, src)
			cals = append(cals, parsed...)
		}

		now := time.Now()
		occs := agenda.Expand(cals, agenda.Options{From: now, To: now.AddDate(0, 0, days)})
		var day string
		for _, occ := range occs {
			if d := occ.Start.Format("Mon 2006-01-02"); d != day {
				day = d
				fmt.Println(day)
			}
			if occ.AllDay {
				fmt.Printf("  all day      %s\n", occ.Summary)
			} else {
				fmt.Printf("  %s-%s  %s\n",
					occ.Start.Format("15:04"), occ.End.Format("15:04"), occ.Summary)
			}
		}
		return nil
	},
}

func setAgendaCmdFlags() {
	agendaCmd.Flags().Int("days", 7, "window size in days")
}

func formatEventItem(it *storage.Item) string {
	when := "unscheduled"
	if it.Start != nil {
		if it.AllDay {
			when = it.Start.Format("2006-01-02")
		} else {
			when = it.Start.Local().Format("2006-01-02 15:04")
		}
	}
	return fmt.Sprintf("%-16s  %s  [%s]", when, utils.Truncate(it.Summary, 60), it.UID)
}

func formatTodoItem(it *storage.Item) string {
	due := "no due date"
	if it.End != nil {
		due = "due " + it.End.Local().Format("2006-01-02 15:04")
	}
	line := fmt.Sprintf("%-21s  %s", due, utils.Truncate(it.Summary, 60))
	if it.Priority > 0 {
		line += fmt.Sprintf("  (p%d)", it.Priority)
	}
	if it.Percent > 0 {
		line += fmt.Sprintf("  %d%%", it.Percent)
	}
	return line + fmt.Sprintf("  [%s]", it.UID)
}
