// Package logger writes application logs to the standard logger and, when a
// Rollbar token is configured, reports warnings and errors to Rollbar.
package logger

import (
	"fmt"
	"log"
	"os"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"lumos/config"
)

var std = log.New(os.Stderr, "", log.LstdFlags)

// Init configures Rollbar reporting from cfg.
func Init(cfg *config.Config) {
	rollbar.SetToken(cfg.RollbarToken)
	rollbar.SetEnvironment(cfg.AppEnv)
	rollbar.SetServerRoot("lumos")
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(cfg.RollbarToken != "")
}

// Close flushes pending Rollbar items.
func Close() {
	rollbar.Close()
}

func Info(format string, args ...interface{}) {
	std.Printf("[INFO] "+format, args...)
}

func Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	std.Print("[WARN] " + msg)
	rollbar.Warning(msg)
}

// Error logs msg with err and forwards both, plus extras, to Rollbar.
func Error(err error, msg string, extras map[string]interface{}) {
	if err != nil {
		std.Printf("[ERROR] %s: %v", msg, err)
	} else {
		std.Printf("[ERROR] %s", msg)
	}
	if extras == nil {
		extras = map[string]interface{}{}
	}
	extras["message"] = msg
	if err != nil {
		rollbar.Error(err, extras)
		return
	}
	rollbar.Error(msg, extras)
}
