package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yzx9/aim/pkg/terrors"
	"github.com/yzx9/aim/pkg/utils"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "AIM"
	EnvCFG    = "AIM_CONFIG"
)

var DefaultPath = "~/.aim"

var configPath string

func ConfigPath() string {
	return configPath
}
func setConfigPath(path string) error {
	path, err := utils.NormalizePath(path)
	if err != nil {
		return err
	}
	configPath = path
	return nil
}

func SelectConfigFile(arg string) error {
	var path string
	env := os.Getenv(EnvCFG)
	if arg != "" {
		path = arg
	} else if env != "" {
		path = env
	} else {
		path = DefaultPath
	}

	return setConfigPath(path)
}

func InitViper(arg string) error {
	err := SelectConfigFile(arg)
	if err != nil {
		return err
	}
	path := ConfigPath()
	viper.SetConfigType("yaml")
	viper.SetConfigName("aim")
	viper.AddConfigPath(path)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err = viper.ReadConfig(bytes.NewReader([]byte(DefaultConfig)))
	if err != nil {
		return fmt.Errorf("%w: failed parsing default configurations: %w", terrors.ErrParse, err)
	}
	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	err = os.MkdirAll(path, 0755)
	if err != nil {
		return err
	}
	err = viper.SafeWriteConfigAs(filepath.Join(path, "aim.yaml"))
	if _, ok := err.(viper.ConfigFileAlreadyExistsError); ok {
		return nil
	}
	return err
}

// CalendarDir resolves the directory holding the .ics calendar files.
func CalendarDir() (string, error) {
	dir := viper.GetString("calendar.dir")
	if dir == "" {
		dir = filepath.Join(ConfigPath(), "calendars")
	}
	return utils.NormalizePath(dir)
}

// CachePath resolves the sqlite cache file location.
func CachePath() (string, error) {
	path := viper.GetString("cache.path")
	if path == "" {
		path = filepath.Join(ConfigPath(), "cache.db")
	}
	return utils.NormalizePath(path)
}
