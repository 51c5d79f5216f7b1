package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yzx9/aim/config"
	"github.com/yzx9/aim/pkg/ical"
	"github.com/yzx9/aim/pkg/terrors"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(importCmd, exportCmd, checkCmd)
	setExportCmdFlags()
}

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "parse .ics files into the cache",
	Long: `import <file>...
  parse each file and cache its events and todos. Diagnostics go to
  stderr; in lenient mode whatever parsed is still imported`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return terrors.ErrNoArgsProvided
		}
		s, err := openStorage()
		if err != nil {
			return err
		}
		defer s.Close()

		clean := true
		for _, path := range args {
			src, err := readSource(path)
			if err != nil {
				return fmt.Errorf("%w: %w", terrors.ErrIO, err)
			}
			cals, ok := parseSource(path, src)
			clean = clean && ok
			for _, cal := range cals {
				if err := s.UpsertCalendar(cal, "", ""); err != nil {
					return err
				}
				fmt.Printf("%s: imported %d events, %d todos\n",
					path, len(cal.Events), len(cal.Todos))
			}
		}
		if !clean {
			return fmt.Errorf("%w: some inputs had problems", terrors.ErrParse)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <uid> [--out=<file>]",
	Short: "write one item as canonical iCalendar",
	Long: `export <uid> [--out=<file>]
  re-serialize the item's .ics file in canonical form, folded to the
  configured width, to stdout or --out`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return terrors.ErrNoArgsProvided
		}
		uid := args[0]

		dir, err := config.CalendarDir()
		if err != nil {
			return err
		}
		path := filepath.Join(dir, uid+".ics")
		src, err := readSource(path)
		if err != nil {
			return fmt.Errorf("%w: no calendar file for uid '%s'", terrors.ErrNotFound, uid)
		}
		cals, ok := parseSource(path, src)
		if !ok || len(cals) == 0 {
			return fmt.Errorf("%w: cannot export %s", terrors.ErrParse, path)
		}

		var out []byte
		for _, cal := range cals {
			out = append(out, ical.Format(cal, formatOptions())...)
		}
		if dest, _ := cmd.Flags().GetString("out"); dest != "" {
			return os.WriteFile(dest, out, 0o644)
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func setExportCmdFlags() {
	exportCmd.Flags().StringP("out", "o", "", "write to file instead of stdout")
}

var checkCmd = &cobra.Command{
	Use:   "check [<file>...]",
	Short: "check .ics files and report every problem",
	Long: `check [<file>...]
  if no arg is provided, every file of the calendar dir is checked.
  reports lexical, structural, validation and semantic problems with
  the offending line`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) < 1 {
			var err error
			paths, err = lsCalendarFiles()
			if err != nil {
				return err
			}
		}

		problems := 0
		for _, path := range paths {
			src, err := readSource(path)
			if err != nil {
				return fmt.Errorf("%w: %w", terrors.ErrIO, err)
			}
			if _, ok := parseSource(path, src); ok {
				fmt.Printf("%s: ok\n", path)
			} else {
				problems++
			}
		}
		if problems > 0 {
			return fmt.Errorf("%w: %d file(s) had problems", terrors.ErrParse, problems)
		}
		return nil
	},
}
