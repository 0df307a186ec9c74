package logging

import (
	"os"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

type zeroLogger struct {
	cfg    *LoggerConfig
	logger zerolog.Logger
}

var zeroLevelMapping = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
	"fatal": zerolog.FatalLevel,
}

func newZeroLogger(cfg *LoggerConfig) *zeroLogger {
	l := &zeroLogger{cfg: cfg}
	l.Init()
	return l
}

func (l *zeroLogger) getLevel() zerolog.Level {
	if level, ok := zeroLevelMapping[l.cfg.Level]; ok {
		return level
	}
	return zerolog.InfoLevel
}

func (l *zeroLogger) Init() {
	fileWriter := &lumberjack.Logger{
		Filename:   l.cfg.FilePath + "parlor.log",
		MaxSize:    10,
		MaxAge:     20,
		MaxBackups: 5,
		Compress:   true,
	}

	multi := zerolog.MultiLevelWriter(os.Stdout, fileWriter)

	l.logger = zerolog.New(multi).
		Level(l.getLevel()).
		With().
		Timestamp().
		Str(string(AppName), "parlor").
		Str(string(LoggerName), "zerolog").
		Logger()
}

func (l *zeroLogger) event(e *zerolog.Event, cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	e.Str("Category", string(cat)).
		Str("SubCategory", string(sub)).
		Fields(logParamsToZeroParams(extra)).
		Msg(msg)
}

func (l *zeroLogger) Debug(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.event(l.logger.Debug(), cat, sub, msg, extra)
}

func (l *zeroLogger) Debugf(template string, args ...any) {
	l.logger.Debug().Msgf(template, args...)
}

func (l *zeroLogger) Info(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.event(l.logger.Info(), cat, sub, msg, extra)
}

func (l *zeroLogger) Infof(template string, args ...any) {
	l.logger.Info().Msgf(template, args...)
}

func (l *zeroLogger) Warn(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.event(l.logger.Warn(), cat, sub, msg, extra)
}

func (l *zeroLogger) Warnf(template string, args ...any) {
	l.logger.Warn().Msgf(template, args...)
}

func (l *zeroLogger) Error(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.event(l.logger.Error(), cat, sub, msg, extra)
}

func (l *zeroLogger) Errorf(template string, args ...any) {
	l.logger.Error().Msgf(template, args...)
}

func (l *zeroLogger) Fatal(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any) {
	l.event(l.logger.Fatal(), cat, sub, msg, extra)
}

func (l *zeroLogger) Fatalf(template string, args ...any) {
	l.logger.Fatal().Msgf(template, args...)
}
