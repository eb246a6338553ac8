package logging

import (
	"context"
	"errors"
	"log/slog"
)

// FanoutHandler duplicates every record across its targets. One failing
// target does not stop delivery to the rest.
type FanoutHandler struct {
	targets []slog.Handler
}

func NewFanoutHandler(targets ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{targets: targets}
}

func (f *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, t := range f.targets {
		if t.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *FanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, t := range f.targets {
		if !t.Enabled(ctx, record.Level) {
			continue
		}
		if err := t.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	targets := make([]slog.Handler, len(f.targets))
	for i, t := range f.targets {
		targets[i] = t.WithAttrs(attrs)
	}
	return &FanoutHandler{targets: targets}
}

func (f *FanoutHandler) WithGroup(name string) slog.Handler {
	targets := make([]slog.Handler, len(f.targets))
	for i, t := range f.targets {
		targets[i] = t.WithGroup(name)
	}
	return &FanoutHandler{targets: targets}
}
