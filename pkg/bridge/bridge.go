// Package bridge maps a function name and its positional arguments to one
// data query and wraps the answer in an Envelope.
package bridge

import (
	"context"
	"log/slog"
	"time"

	"f1databridge/pkg/f1"
	"f1databridge/pkg/failure"
	"f1databridge/pkg/frame"
)

// Source is what the operations query.
type Source interface {
	EventSchedule(ctx context.Context, year int) (f1.Schedule, error)
	GetEvent(ctx context.Context, year int, identifier string) (f1.Event, error)
	GetSession(ctx context.Context, year int, eventID, sessionID string) (*f1.Session, error)
	Standings(ctx context.Context, year, round int) (drivers, constructors []frame.Record, err error)
}

type Bridge struct {
	source Source
	log    *slog.Logger
}

func New(source Source, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{source: source, log: logger}
}

// Dispatch runs the function named by args[0] with the remaining arguments.
// It never panics and always returns an envelope.
func (b *Bridge) Dispatch(ctx context.Context, args []string) Envelope {
	fn, env, ok := Route(args)
	if !ok {
		b.log.Warn("request rejected", slog.String("message", env.Message))
		return env
	}

	started := time.Now()
	b.log.Info("request", slog.String("function", fn.String()), slog.Any("args", args[1:]))
	data, err := b.Call(ctx, fn, args[1:])
	if err != nil {
		b.log.Error("request failed",
			slog.String("function", fn.String()),
			slog.String("kind", string(failure.KindOf(err))),
			slog.String("error", err.Error()),
			slog.Duration("took", time.Since(started)),
		)
		return Failure(err)
	}
	b.log.Info("request done", slog.String("function", fn.String()), slog.Duration("took", time.Since(started)))
	return Success(data)
}

// Route resolves the function named by args[0]. It needs no configuration,
// so callers can reject a bad request before opening anything. When ok is
// false env holds the error to print.
func Route(args []string) (fn Function, env Envelope, ok bool) {
	if len(args) == 0 {
		return FunctionUnknown, dispatchError("No function specified"), false
	}
	fn, ok = ParseFunction(args[0])
	if !ok {
		return FunctionUnknown, dispatchError("Unknown function: " + args[0]), false
	}
	return fn, Envelope{}, true
}

// Call runs one operation, turning a panic into an internal error.
func (b *Bridge) Call(ctx context.Context, fn Function, args []string) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, failure.Internal("%s: %v", fn, r)
		}
	}()

	switch fn {
	case GetEventSchedule:
		return b.getEventSchedule(ctx, args)
	case GetEventInfo:
		return b.getEventInfo(ctx, args)
	case GetSessionResults:
		return b.getSessionResults(ctx, args)
	case GetDriverInfo:
		return b.getDriverInfo(ctx, args)
	case AnalyzeDriverPerformance:
		return b.analyzeDriverPerformance(ctx, args)
	case CompareDrivers:
		return b.compareDrivers(ctx, args)
	case GetTelemetry:
		return b.getTelemetry(ctx, args)
	case GetChampionshipStandings:
		return b.getChampionshipStandings(ctx, args)
	}
	return nil, failure.Internal("function %s is not wired", fn)
}
