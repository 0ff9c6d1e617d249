package logging

import (
	"io"
	"os"
	"strings"

	"github.com/2beens/cyclingcoach/internal/config"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMB  = 50
	logFileMaxBackups = 20
	logFileMaxAgeDays = 90
)

type Params struct {
	LogsPath    string
	LogToStdout bool
	LogLevel    string
	JSON        bool
	Environment string

	SentryEnabled bool
	SentryDSN     string
	ServiceName   string
}

// ParamsFromConfig uses JSON lines in production, where logs are shipped,
// and text everywhere else.
func ParamsFromConfig(cfg *config.Config, sentryDSN, serviceName string) Params {
	return Params{
		LogsPath:      cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		JSON:          strings.EqualFold(cfg.Environment, "production"),
		Environment:   cfg.Environment,
		SentryEnabled: cfg.SentryEnabled,
		SentryDSN:     sentryDSN,
		ServiceName:   serviceName,
	}
}

func Setup(params Params) {
	if params.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{logrus.FieldKeyMsg: "message"},
		})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.SentryEnabled {
		setupSentry(params)
	}

	logrus.SetOutput(output(params))
	logrus.WithFields(logrus.Fields{
		"service":   params.ServiceName,
		"logs_path": params.LogsPath,
		"stdout":    params.LogToStdout || params.LogsPath == "",
	}).Info("logging ready")
}

func setupSentry(params Params) {
	err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 1.0,
		ServerName:       params.ServiceName,
	})
	if err != nil {
		logrus.Errorf("sentry init: %s", err)
		return
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
}

// output picks the log sink: stdout when no file is configured, otherwise a
// rotated file, optionally mirrored to stdout.
func output(params Params) io.Writer {
	if params.LogsPath == "" {
		return os.Stdout
	}

	rotated := &lumberjack.Logger{
		Filename:   logFileName(params.LogsPath),
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
		Compress:   true,
	}
	if params.LogToStdout {
		return newFanoutWriter(os.Stdout, rotated)
	}
	return rotated
}

func logFileName(path string) string {
	if strings.HasSuffix(path, ".log") {
		return path
	}
	return path + ".log"
}

// GetLevel parses a config log level; unknown or empty values log everything.
func GetLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.TraceLevel
	}
	return parsed
}
