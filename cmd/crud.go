package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yzx9/aim/config"
	"github.com/yzx9/aim/pkg/draft"
	"github.com/yzx9/aim/pkg/ical"
	"github.com/yzx9/aim/pkg/terrors"
	"github.com/yzx9/aim/pkg/utils"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(addEventCmd, addTodoCmd, doneCmd, delCmd)
	setAddEventCmdFlags()
	setAddTodoCmdFlags()
}

// parseWhen accepts "2006-01-02 15:04" or a bare date; the bool
// reports the all-day case.
func parseWhen(arg string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04", arg, time.Local); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", arg, time.Local); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, terrors.ErrorArgParse(arg, fmt.Errorf("want '2006-01-02 15:04' or '2006-01-02'"))
}

// storeDraft writes the draft to the calendar dir and caches it.
func storeDraft(d *draft.Draft) (string, error) {
	dir, err := config.CalendarDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, d.UID+".ics")
	if err := os.WriteFile(path, d.ICS, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", terrors.ErrIO, err)
	}

	s, err := openStorage()
	if err != nil {
		return "", err
	}
	defer s.Close()
	if err := s.UpsertCalendar(d.Calendar, "", ""); err != nil {
		return "", err
	}
	return path, nil
}

var addEventCmd = &cobra.Command{
	Use:   "add-event <summary> --start=<when> [--end=<when>] [--location=<where>] [--desc=<text>]",
	Short: "create an event",
	Long: `add-event <summary> --start=<when> [--end=<when>] [--location=<where>] [--desc=<text>]
  create an event, write it to the calendar dir and cache it.
  <when> is '2006-01-02 15:04' or '2006-01-02' for all-day`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return terrors.ErrNoArgsProvided
		}
		summary := strings.Join(args, " ")

		startArg, err := cmd.Flags().GetString("start")
		if err != nil {
			return err
		}
		if startArg == "" {
			return terrors.ErrorArgNotProvided("start")
		}
		start, allDay, err := parseWhen(startArg)
		if err != nil {
			return err
		}

		ev := draft.Event{Summary: summary, Start: start, AllDay: allDay}
		if endArg, _ := cmd.Flags().GetString("end"); endArg != "" {
			end, _, err := parseWhen(endArg)
			if err != nil {
				return err
			}
			ev.End = end
		}
		ev.Location, _ = cmd.Flags().GetString("location")
		ev.Description, _ = cmd.Flags().GetString("desc")

		d, err := ev.Build()
		if err != nil {
			return err
		}
		path, err := storeDraft(d)
		if err != nil {
			return err
		}
		fmt.Printf("created event %s (%s)\n", d.UID, path)
		return nil
	},
}

func setAddEventCmdFlags() {
	addEventCmd.Flags().String("start", "", "start date or date-time")
	addEventCmd.Flags().String("end", "", "end date or date-time")
	addEventCmd.Flags().String("location", "", "where it happens")
	addEventCmd.Flags().String("desc", "", "longer description")
}

var addTodoCmd = &cobra.Command{
	Use:   "add-todo <summary> [--due=<when>] [--priority=<0..9>] [--desc=<text>]",
	Short: "create a todo",
	Long: `add-todo <summary> [--due=<when>] [--priority=<0..9>] [--desc=<text>]
  create a todo, write it to the calendar dir and cache it`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return terrors.ErrNoArgsProvided
		}
		td := draft.Todo{Summary: strings.Join(args, " ")}

		if dueArg, _ := cmd.Flags().GetString("due"); dueArg != "" {
			due, allDay, err := parseWhen(dueArg)
			if err != nil {
				return err
			}
			if allDay {
				// A bare date means end of that day.
				due = due.Add(24*time.Hour - time.Second)
			}
			td.Due = due
		}
		var err error
		td.Priority, err = cmd.Flags().GetInt("priority")
		if err != nil {
			return err
		}
		td.Description, _ = cmd.Flags().GetString("desc")

		d, err := td.Build()
		if err != nil {
			return err
		}
		path, err := storeDraft(d)
		if err != nil {
			return err
		}
		fmt.Printf("created todo %s (%s)\n", d.UID, path)
		return nil
	},
}

func setAddTodoCmdFlags() {
	addTodoCmd.Flags().String("due", "", "due date or date-time")
	addTodoCmd.Flags().Int("priority", 0, "priority, 1 highest, 0 unset")
	addTodoCmd.Flags().String("desc", "", "longer description")
}

var doneCmd = &cobra.Command{
	Use:   "done <uid>",
	Short: "mark a todo completed",
	Long: `done <uid>
  mark a todo completed in the cache and in its .ics file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return terrors.ErrNoArgsProvided
		}
		uid := args[0]

		s, err := openStorage()
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.MarkDone(uid); err != nil {
			return err
		}

		if err := completeInFile(uid); err != nil {
			return err
		}
		fmt.Printf("completed %s\n", uid)
		return nil
	},
}

// completeInFile rewrites <uid>.ics with the todo closed out. A
// missing file is fine: the item may only live server-side.
func completeInFile(uid string) error {
	dir, err := config.CalendarDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, uid+".ics")
	src, err := readSource(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cals, ok := parseSource(path, src)
	if !ok || len(cals) == 0 {
		return fmt.Errorf("%w: cannot rewrite %s", terrors.ErrParse, path)
	}
	cal := cals[0]
	for i := range cal.Todos {
		td := &cal.Todos[i]
		if td.UID.Value().Text != uid {
			continue
		}
		td.Status = utils.MkPtr(ical.TodoCompleted)
		td.PercentComplete = &ical.PercentComplete{Prop: ical.Prop{
			Values: []ical.Value{{Type: ical.ValueInteger, Integer: 100}},
		}}
	}
	return os.WriteFile(path, ical.Format(cal, formatOptions()), 0o644)
}

var delCmd = &cobra.Command{
	Use:   "del <uid>",
	Short: "delete an item",
	Long: `del <uid>
  remove an item from the cache and delete its .ics file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return terrors.ErrNoArgsProvided
		}
		uid := args[0]

		s, err := openStorage()
		if err != nil {
			return err
		}
		defer s.Close()

		it, err := s.GetItem(uid)
		if err != nil {
			return err
		}
		if it != nil && it.Href != "" {
			// Synced item: remove it server-side too, guarded by
			// the last known etag.
			client, err := newCalDAVClient()
			if err != nil {
				return err
			}
			if err := client.DeleteObject(cmd.Context(), it.Href, it.ETag); err != nil {
				return err
			}
		}
		if err := s.DeleteItem(uid); err != nil {
			return err
		}

		dir, err := config.CalendarDir()
		if err != nil {
			return err
		}
		if err := os.Remove(filepath.Join(dir, uid+".ics")); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: %w", terrors.ErrIO, err)
		}
		fmt.Printf("deleted %s\n", uid)
		return nil
	},
}
