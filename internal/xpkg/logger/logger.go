package logger

import (
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the action-scoped structured logger shared by every service mode.
type Logger interface {
	Action(action string) Logger
	With(args ...any) Logger
	WithGroup(name string) Logger

	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, err error, args ...any)

	Sync() error
}

type Options struct {
	Level    string
	Hostname string
	// LoggerProvider, when set, tees every record into the OpenTelemetry log pipeline.
	LoggerProvider log.LoggerProvider
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a JSON logger on stdout tagged with the service name.
func New(service string, opts Options) Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if opts.Level != "" {
		if l, err := zapcore.ParseLevel(opts.Level); err == nil {
			level = l
		}
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		level,
	)
	if opts.LoggerProvider != nil {
		otelCore := otelzap.NewCore(service, otelzap.WithLoggerProvider(opts.LoggerProvider))
		core = zapcore.NewTee(core, otelCore)
	}

	hostname := opts.Hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	l := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", service), zap.String("hostname", hostname)),
	)
	return &zapLogger{sugar: l.Sugar()}
}

// FromZap wraps an existing zap logger, mostly for tests with an observer core.
func FromZap(l *zap.Logger) Logger {
	return &zapLogger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *zapLogger) Action(action string) Logger {
	return &zapLogger{sugar: l.sugar.With("action", action)}
}

func (l *zapLogger) With(args ...any) Logger {
	return &zapLogger{sugar: l.sugar.With(args...)}
}

func (l *zapLogger) WithGroup(name string) Logger {
	return &zapLogger{sugar: l.sugar.With(zap.Namespace(name))}
}

func (l *zapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *zapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }

func (l *zapLogger) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, zap.Error(err))
	}
	l.sugar.Errorw(msg, args...)
}

func (l *zapLogger) Sync() error {
	return l.sugar.Sync()
}

// Nop discards everything.
func Nop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}
