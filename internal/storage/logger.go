package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// zerologger routes gorm's logging through zerolog. SQL statements are
// traced at trace level, failed ones at error level.
type zerologger struct {
	Logger zerolog.Logger
}

func (z zerologger) LogMode(level logger.LogLevel) logger.Interface {
	switch level {
	case logger.Silent:
		z.Logger = z.Logger.Level(zerolog.Disabled)
	case logger.Error:
		z.Logger = z.Logger.Level(zerolog.ErrorLevel)
	case logger.Warn:
		z.Logger = z.Logger.Level(zerolog.WarnLevel)
	}
	return z
}

func (z zerologger) Info(c context.Context, m string, x ...interface{}) {
	z.Logger.Info().Msgf(m, x...)
}

func (z zerologger) Warn(c context.Context, m string, x ...interface{}) {
	z.Logger.Warn().Msgf(m, x...)
}

func (z zerologger) Error(c context.Context, m string, x ...interface{}) {
	z.Logger.Error().Msgf(m, x...)
}

func (z zerologger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	var ev *zerolog.Event
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		ev = z.Logger.Error().Err(err)
	} else {
		ev = z.Logger.Trace()
	}
	if !ev.Enabled() {
		return
	}
	s, r := fc()
	verb := strings.ToLower(strings.SplitN(s, " ", 2)[0])
	ev.Int64("rows", r).Dur("duration_ms", time.Since(begin)).Str("verb", verb).Msg(s)
}
