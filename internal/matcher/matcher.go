// Package matcher scores extracted facial features against breed catalog
// entries and picks a match. A dynamic strategy works over the live
// catalog; a static strategy over a dozen built-in breeds serves as the
// fallback.
package matcher

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kozaktomas/breed-twin/internal/features"
)

// ErrEmptyCatalog is returned by the dynamic strategy when no breeds are
// available.
var ErrEmptyCatalog = errors.New("breed catalog is empty")

// Result is a breed match.
type Result struct {
	ID            string             `json:"id"`
	Breed         string             `json:"breed"`
	Confidence    float64            `json:"confidence"`
	Score         float64            `json:"score"`
	Reasoning     string             `json:"reasoning"`
	DogImage      string             `json:"dogImage"`
	FaceShape     features.FaceShape `json:"faceShape,omitempty"`
	NumberOfFaces int                `json:"numberOfFaces"`
	BreedInfo     *BreedInfo         `json:"breedInfo,omitempty"`
	Strategy      string             `json:"strategy"`
	Tested        int                `json:"tested"`
}

// Strategy matches a feature set to a breed.
type Strategy interface {
	Name() string
	Match(ctx context.Context, f features.Set) (Result, error)
}

type settings struct {
	tuning Tuning
	seeds  *seeder
	logger *zap.Logger
}

// Option configures strategies and the dispatcher.
type Option func(*settings)

// WithRand sets the random source. Matches drawn from the same seed are
// reproducible.
func WithRand(r *rand.Rand) Option {
	return func(s *settings) {
		s.seeds = newSeeder(r)
	}
}

// WithTuning replaces the embedded tuning.
func WithTuning(t Tuning) Option {
	return func(s *settings) {
		s.tuning = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

func newSettings(opts []Option) settings {
	s := settings{tuning: DefaultTuning(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.seeds == nil {
		s.seeds = newSeeder(nil)
	}
	return s
}

// seeder hands out independent generators derived from one source so
// concurrent matches do not share a *rand.Rand.
type seeder struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newSeeder(r *rand.Rand) *seeder {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &seeder{r: r}
}

func (s *seeder) next() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewPCG(s.r.Uint64(), s.r.Uint64()))
}

func newResult(strategy string, f features.Set, c Candidate, conf float64, tested int) Result {
	return Result{
		ID:            uuid.NewString(),
		Breed:         c.Entry.Name,
		Confidence:    conf,
		Score:         c.Score,
		FaceShape:     f.FaceShape,
		NumberOfFaces: f.NumberOfFaces,
		Strategy:      strategy,
		Tested:        tested,
	}
}
