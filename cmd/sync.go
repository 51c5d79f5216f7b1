package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/yzx9/aim/pkg/caldav"
	"github.com/yzx9/aim/pkg/logging"
	"github.com/yzx9/aim/pkg/storage"
	"github.com/yzx9/aim/pkg/terrors"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(syncCmd)
	setSyncCmdFlags()
}

var syncCmd = &cobra.Command{
	Use:   "sync [--daemon]",
	Short: "sync the cache with the CalDAV calendar",
	Long: `sync [--daemon]
  discover the configured CalDAV calendar, cache its objects and push
  locally created ones.
  --daemon keeps running and syncs on the 'sync.schedule' cron spec.
  the password is read from the ` + "`AIM_CALDAV_PASSWORD`" + ` env var`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newCalDAVClient()
		if err != nil {
			return err
		}

		daemon, err := cmd.Flags().GetBool("daemon")
		if err != nil {
			return err
		}
		if !daemon {
			return runSync(cmd.Context(), client)
		}

		schedule := viper.GetString("sync.schedule")
		c := cron.New()
		_, err = c.AddFunc(schedule, func() {
			if err := runSync(context.Background(), client); err != nil {
				logging.Logger.Errorf("sync failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("%w: %w: bad 'sync.schedule' '%s'", terrors.ErrConf, terrors.ErrValue, schedule)
		}
		logging.Logger.Infof("sync daemon running on schedule %q", schedule)
		c.Run()
		return nil
	},
}

func setSyncCmdFlags() {
	syncCmd.Flags().Bool("daemon", false, "keep running and sync on a schedule")
}

func newCalDAVClient() (*caldav.Client, error) {
	endpoint := viper.GetString("caldav.endpoint")
	if endpoint == "" {
		return nil, fmt.Errorf("%w: 'caldav.endpoint' is not set", terrors.ErrConf)
	}
	client := caldav.NewClient(endpoint,
		viper.GetString("caldav.username"),
		viper.GetString("caldav.password"))
	client.SetHTTPClient(&http.Client{
		Timeout: time.Duration(viper.GetInt("caldav.timeout-seconds")) * time.Second,
	})
	client.SetLogger(logging.Logger)
	return client, nil
}

// runSync is one full round: discover, pick the configured calendar,
// push local items the server has never seen, then pull, skipping the
// pull when nothing was pushed and the ctag is unchanged.
func runSync(ctx context.Context, client *caldav.Client) error {
	s, err := openStorage()
	if err != nil {
		return err
	}
	defer s.Close()

	principal, err := client.CurrentUserPrincipal(ctx)
	if err != nil {
		return err
	}
	home, err := client.CalendarHome(ctx, principal)
	if err != nil {
		return err
	}
	cals, err := client.ListCalendars(ctx, home)
	if err != nil {
		return err
	}
	cal, err := pickCalendar(cals, viper.GetString("caldav.calendar"))
	if err != nil {
		return err
	}

	pushed, err := pushLocal(ctx, client, s, cal.Href)
	if err != nil {
		return err
	}

	if pushed == 0 && cal.CTag != "" {
		cached, err := s.CollectionTag(cal.Href)
		if err != nil {
			return err
		}
		if cached == cal.CTag {
			logging.Logger.Debugf("calendar %s unchanged (ctag %s)", cal.Href, cal.CTag)
			return nil
		}
	}

	objs, err := client.QueryObjects(ctx, cal.Href, "", nil, nil)
	if err != nil {
		return err
	}
	synced := 0
	for _, obj := range objs {
		if obj.Data == "" {
			continue
		}
		parsed, ok := parseSource(obj.Href, obj.Data)
		if !ok {
			logging.Logger.Warnf("skipping %s: remote data did not parse cleanly", obj.Href)
		}
		for _, pc := range parsed {
			if err := s.UpsertCalendar(pc, obj.Href, obj.ETag); err != nil {
				return err
			}
			synced++
		}
	}
	if err := s.SetCollectionTag(cal.Href, cal.CTag); err != nil {
		return err
	}
	logging.Logger.Infof("synced %d objects from %s, pushed %d", synced, cal.Href, pushed)
	fmt.Printf("synced %d objects from %s, pushed %d\n", synced, cal.DisplayName, pushed)
	return nil
}

// pushLocal uploads calendar-dir files the server does not have yet.
// Locally created items carry no href; each one is PUT under the
// collection guarded by If-None-Match, and the returned etag is cached
// so the next pull recognizes it.
func pushLocal(ctx context.Context, client *caldav.Client, s *storage.Storage, calHref string) (int, error) {
	paths, err := lsCalendarFiles()
	if err != nil {
		return 0, err
	}
	pushed := 0
	for _, path := range paths {
		uid := strings.TrimSuffix(filepath.Base(path), ".ics")
		it, err := s.GetItem(uid)
		if err != nil {
			return pushed, err
		}
		if it == nil || it.Href != "" {
			continue
		}
		src, err := readSource(path)
		if err != nil {
			return pushed, err
		}
		href := strings.TrimSuffix(calHref, "/") + "/" + uid + ".ics"
		etag, err := client.PutObject(ctx, href, []byte(src), "")
		if err != nil {
			logging.Logger.Warnf("push %s: %v", uid, err)
			continue
		}
		it.Href, it.ETag = href, etag
		if err := s.UpsertItem(it); err != nil {
			return pushed, err
		}
		pushed++
	}
	return pushed, nil
}

func pickCalendar(cals []caldav.Calendar, name string) (*caldav.Calendar, error) {
	if len(cals) == 0 {
		return nil, fmt.Errorf("%w: server has no calendar collections", terrors.ErrNotFound)
	}
	if name == "" {
		return &cals[0], nil
	}
	for i := range cals {
		if cals[i].DisplayName == name {
			return &cals[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no calendar named '%s'", terrors.ErrNotFound, name)
}
