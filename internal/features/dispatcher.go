package features

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/kozaktomas/breed-twin/internal/imaging"
)

// Dispatcher runs the primary strategy and falls back to the secondary one
// when it fails. Extraction never fails from the caller's point of view.
type Dispatcher struct {
	primary  Strategy
	fallback Strategy
	maxSize  int
	logger   *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMaxSize downsizes images larger than n pixels on either side before
// extraction. Zero disables resizing.
func WithMaxSize(n int) Option {
	return func(d *Dispatcher) { d.maxSize = n }
}

// NewDispatcher creates a dispatcher. A nil primary runs only the fallback.
func NewDispatcher(primary, fallback Strategy, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		primary:  primary,
		fallback: fallback,
		logger:   zap.NewNop(),
	}
	if d.fallback == nil {
		d.fallback = Geometric{}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Extract decodes data and extracts its features. Undecodable data yields
// the Neutral set.
func (d *Dispatcher) Extract(ctx context.Context, data []byte) Set {
	img, err := imaging.Decode(data)
	if err != nil {
		d.logger.Warn("image decode failed, using neutral features", zap.Error(err))
		return Neutral()
	}
	return d.extract(ctx, img)
}

// ExtractImage extracts features from an already decoded image.
func (d *Dispatcher) ExtractImage(ctx context.Context, img image.Image) Set {
	n, err := imaging.ToNRGBA(img)
	if err != nil {
		d.logger.Warn("empty image, using neutral features", zap.Error(err))
		return Neutral()
	}
	return d.extract(ctx, n)
}

func (d *Dispatcher) extract(ctx context.Context, img *image.NRGBA) Set {
	img = imaging.Fit(img, d.maxSize)

	if d.primary != nil {
		set, err := run(ctx, d.primary, img)
		if err == nil {
			return set
		}
		d.logger.Warn("primary feature extraction failed, using fallback",
			zap.String("strategy", d.primary.Name()),
			zap.String("fallback", d.fallback.Name()),
			zap.Error(err))
	}

	set, err := run(ctx, d.fallback, img)
	if err != nil {
		d.logger.Warn("fallback feature extraction failed, using neutral features",
			zap.String("strategy", d.fallback.Name()),
			zap.Error(err))
		return Neutral()
	}
	return set
}

// run calls s and converts a panic into an error.
func run(ctx context.Context, s Strategy, img *image.NRGBA) (set Set, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Extract(ctx, img)
}
