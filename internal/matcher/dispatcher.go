package matcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kozaktomas/breed-twin/internal/features"
)

// Dispatcher runs the primary strategy and falls back to the static one
// on any error or panic.
type Dispatcher struct {
	primary Strategy
	static  *Static
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher. A nil static uses NewStatic(nil).
func NewDispatcher(primary Strategy, static *Static, opts ...Option) *Dispatcher {
	s := newSettings(opts)
	if static == nil {
		static = NewStatic(nil, opts...)
	}
	return &Dispatcher{primary: primary, static: static, logger: s.logger}
}

// Match always returns a result.
func (d *Dispatcher) Match(ctx context.Context, f features.Set) Result {
	if d.primary != nil {
		res, err := run(ctx, d.primary, f)
		if err == nil {
			return res
		}
		d.logger.Warn("match strategy failed, using static breeds",
			zap.String("strategy", d.primary.Name()), zap.Error(err))
	}
	res, _ := d.static.Match(ctx, f)
	return res
}

// Suggest returns the n best static matches.
func (d *Dispatcher) Suggest(ctx context.Context, f features.Set, n int) []Result {
	return d.static.Suggest(ctx, f, n)
}

func run(ctx context.Context, s Strategy, f features.Set) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Match(ctx, f)
}
