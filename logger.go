package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/ipcensus/ipcensus/census"
)

type logger struct {
	buildLog  zerolog.Logger
	lookupLog zerolog.Logger
}

func (l *logger) BuildPublished(records int) {
	l.buildLog.Info().Int("records", records).Msg("Snapshot was published")
}

func (l *logger) BuildError(err error) {
	l.buildLog.Error().Err(err).Msg("")
}

func (l *logger) CustomerSkipped(customerID int64, err error) {
	l.buildLog.Warn().Int64("customer_id", customerID).Err(err).
		Msg("Cannot fetch services, customer is skipped")
}

func (l *logger) DuplicateIP(ip string, previousServiceID, currentServiceID int64) {
	l.buildLog.Warn().
		Str("ip", ip).
		Int64("previous_service_id", previousServiceID).
		Int64("current_service_id", currentServiceID).
		Msg("Duplicate IPv4, the later service wins")
}

func (l *logger) LookupError(ip string, err error) {
	l.lookupLog.Error().Str("ip", ip).Err(err).Msg("")
}

func newLogger(debug bool) census.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	base := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	return &logger{
		buildLog:  base.With().Str("event_name", "build").Logger(),
		lookupLog: base.With().Str("event_name", "lookup").Logger(),
	}
}
