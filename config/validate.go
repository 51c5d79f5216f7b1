package config

import (
	"fmt"
	"net/url"

	"github.com/yzx9/aim/pkg/terrors"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Validate checks every known config key and returns one error per
// offending key.
func Validate() []error {
	var errs []error
	// logging.*
	{
		if err := validateLogLevel("logging.console-level"); err != nil {
			errs = append(errs, err)
		}
		if err := validateLogLevel("logging.file-level"); err != nil {
			errs = append(errs, err)
		}
	}

	// parse.*
	{
		if err := validateTypeString("parse.mode"); err != nil {
			errs = append(errs, err)
		} else if mode := viper.GetString("parse.mode"); mode != "strict" && mode != "lenient" {
			errs = append(errs, fmt.Errorf("%w: %w: 'parse.mode' must be 'strict' or 'lenient' not '%s'", terrors.ErrConf, terrors.ErrValue, mode))
		}
		if err := validateTypeInt("parse.max-depth"); err != nil {
			errs = append(errs, err)
		} else if val := viper.GetInt("parse.max-depth"); val < 1 || val > 64 {
			errs = append(errs, fmt.Errorf("%w: %w: 'parse.max-depth' must be between 1 and 64 not '%d'", terrors.ErrConf, terrors.ErrValue, val))
		}
	}

	// format.*
	{
		if err := validateTypeInt("format.fold-width"); err != nil {
			errs = append(errs, err)
		} else if val := viper.GetInt("format.fold-width"); val != 0 && (val < 8 || val > 998) {
			errs = append(errs, fmt.Errorf("%w: %w: 'format.fold-width' must be 0 (no folding) or between 8 and 998 not '%d'", terrors.ErrConf, terrors.ErrValue, val))
		}
	}

	// caldav.*
	{
		for _, key := range []string{"caldav.endpoint", "caldav.username", "caldav.calendar"} {
			if err := validateTypeString(key); err != nil {
				errs = append(errs, err)
			}
		}
		if endpoint := viper.GetString("caldav.endpoint"); endpoint != "" {
			if _, err := url.ParseRequestURI(endpoint); err != nil {
				errs = append(errs, fmt.Errorf("%w: %w: 'caldav.endpoint' is not a valid url: %w", terrors.ErrConf, terrors.ErrValue, err))
			}
		}
		if err := validateTypeInt("caldav.timeout-seconds"); err != nil {
			errs = append(errs, err)
		} else if val := viper.GetInt("caldav.timeout-seconds"); val < 1 || val > 600 {
			errs = append(errs, fmt.Errorf("%w: %w: 'caldav.timeout-seconds' must be between 1 and 600 not '%d'", terrors.ErrConf, terrors.ErrValue, val))
		}
	}

	// sync.*
	{
		if err := validateTypeString("sync.schedule"); err != nil {
			errs = append(errs, err)
		} else if sched := viper.GetString("sync.schedule"); sched != "" {
			if _, err := cron.ParseStandard(sched); err != nil {
				errs = append(errs, fmt.Errorf("%w: %w: 'sync.schedule' is not a valid cron spec: %w", terrors.ErrConf, terrors.ErrValue, err))
			}
		}
	}
	return errs
}

func validateLogLevel(key string) error {
	if err := validateTypeInt(key); err != nil {
		return err
	}
	val := viper.GetInt(key)
	if val < -1 || val > 5 {
		return fmt.Errorf("%w: %w: config key '%s' must be between '-1' and '5' and not '%d'", terrors.ErrConf, terrors.ErrValue, key, val)
	}
	return nil
}

func validateTypeInt(key string) error {
	raw := viper.Get(key)
	switch raw.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return nil
	default:
		return fmt.Errorf("%w: %w: config key '%s' must be of an int type not '%T'", terrors.ErrConf, terrors.ErrType, key, raw)
	}
}

func validateTypeString(key string) error {
	raw := viper.Get(key)
	switch raw.(type) {
	case string:
		return nil
	default:
		return fmt.Errorf("%w: %w: config key '%s' must be of type string not '%T'", terrors.ErrConf, terrors.ErrType, key, raw)
	}
}
