// Package logging wires a zap SugaredLogger with two cores: a console
// core gated by 'logging.console-level' (lowered by --debug) and a JSON
// file core appending to aim.log in the config dir, gated by
// 'logging.file-level'.
package logging

import (
	"os"
	"path/filepath"

	"github.com/yzx9/aim/config"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is safe to use before Initialize; it starts as a nop.
	Logger = zap.NewNop().Sugar()

	// ConsoleLevel, when non-zero, overrides 'logging.console-level'.
	// --debug sets it to -1 before Initialize runs.
	ConsoleLevel int

	fileHandle *os.File
)

func Initialize() error {
	consoleLevel := viper.GetInt("logging.console-level")
	if ConsoleLevel != 0 {
		consoleLevel = ConsoleLevel
	}
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zapcore.Level(consoleLevel),
	)

	fileEncCfg := zap.NewProductionEncoderConfig()
	fileEncCfg.TimeKey = "ts"
	fileEncCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	logPath := filepath.Join(config.ConfigPath(), "aim.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	fileHandle = f
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(fileEncCfg),
		zapcore.AddSync(f),
		zapcore.Level(viper.GetInt("logging.file-level")),
	)

	core := zapcore.NewTee(consoleCore, fileCore)
	Logger = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).Sugar()
	return nil
}

func Close() error {
	if fileHandle != nil {
		return fileHandle.Close()
	}
	return nil
}
