package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yzx9/aim/config"
	"github.com/yzx9/aim/pkg/ical"
	"github.com/yzx9/aim/pkg/logging"
	"github.com/yzx9/aim/pkg/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:          "aim",
	Short:        fmt.Sprintf("aim %s: a local-first calendar and task manager speaking iCalendar", version),
	SilenceUsage: true,
}

func init() {
	rootCmd.SetHelpTemplate(`
{{ with (or .Long .Short) }}{{ . | trimTrailingWhitespaces }}

{{ end}}Usage:{{if .Runnable}}
  {{ .UseLine }} [flags]{{end}}{{if .HasAvailableSubCommands}}
  {{ .CommandPath }} [command]{{end}}{{if gt (len .Aliases) 0 }}

Aliases:
  {{ .NameAndAliases }}{{end}}{{if .HasExample}}

Examples:
{{ .Example }}{{end}}{{if .HasAvailableSubCommands}}}

Available Commands:
{{- range .Commands }}
  {{ rpad .NameAndAliases 20 }} {{ .Short }}
{{- end}}{{end}}{{if .HasAvailableFlags}}{{if not .Parent}}

Flags:
{{ .Flags.FlagUsages | trimTrailingWhitespaces }}{{else}}

{{ if .HasInheritedFlags }}Local {{end}}Flags:
{{ .LocalFlags.FlagUsages | trimTrailingWhitespaces }}{{if .HasInheritedFlags}}

Global Flags:
{{ .InheritedFlags.FlagUsages | trimTrailingWhitespaces }}{{end}}{{end}}{{end}}
`)
	cobra.OnInitialize(func() {
		arg, err := rootCmd.PersistentFlags().GetString("config")
		cobra.CheckErr(err)
		cobra.CheckErr(config.InitViper(arg))
		if viper.GetBool("debug") {
			logging.ConsoleLevel = -1
		}
		cobra.CheckErr(logging.Initialize())
	})
	rootCmd.PersistentFlags().StringP("config", "c", "", "yaml config filepath")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debugging mode")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	rootCmd.PersistentFlags().String("mode", "", "parse mode: strict or lenient")
	viper.BindPFlag("parse.mode", rootCmd.PersistentFlags().Lookup("mode"))
}

func Execute() error {
	defer logging.Close()
	return rootCmd.Execute()
}

// parseOptions assembles parser options from config.
func parseOptions() ical.Options {
	opts := ical.Options{MaxDepth: viper.GetInt("parse.max-depth")}
	if viper.GetString("parse.mode") == "strict" {
		opts.Mode = ical.ModeStrict
	}
	return opts
}

func formatOptions() ical.FormatOptions {
	width := viper.GetInt("format.fold-width")
	if width == 0 {
		width = -1
	}
	return ical.FormatOptions{FoldWidth: width}
}

// openStorage opens the sqlite cache at its configured location.
func openStorage() (*storage.Storage, error) {
	path, err := config.CachePath()
	if err != nil {
		return nil, err
	}
	return storage.New(path)
}

// parseSource runs one ICS source through the pipeline and prints a
// rendered diagnostic per error. Lenient mode keeps whatever parsed.
func parseSource(name, src string) ([]*ical.ICalendar, bool) {
	cals, errs := ical.Parse(src, parseOptions())
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "%s:%s\n", name, e.Render(src))
	}
	return cals, len(errs) == 0
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// lsCalendarFiles lists the .ics files under the calendar dir.
func lsCalendarFiles() ([]string, error) {
	dir, err := config.CalendarDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".ics") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
