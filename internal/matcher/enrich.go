package matcher

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kozaktomas/breed-twin/internal/catalog"
	"github.com/kozaktomas/breed-twin/internal/dogapi"
)

// Defaults used when breed metadata is missing.
const (
	DefaultTemperament = "Friendly and loyal"
	DefaultOrigin      = "Various regions"
	UnknownOrigin      = "Unknown"
	DefaultHeight      = "Medium height"
	DefaultWeight      = "Medium weight"
	DefaultLifeSpan    = "10-15 years"
	DefaultDescription = "Description unavailable for this breed"
	companionsSuffix   = "s are wonderful companions."
)

// MetadataSource looks up breed facts.
type MetadataSource interface {
	Lookup(ctx context.Context, name string) (*dogapi.BreedInfo, error)
}

// Encyclopedia returns a prose summary for a breed.
type Encyclopedia interface {
	Summary(ctx context.Context, name string) (string, error)
}

// Describer writes a short breed description, typically with an LLM.
type Describer interface {
	Describe(ctx context.Context, breed string) (string, error)
}

// ImageSource returns a representative image. It must not fail.
type ImageSource interface {
	ImageFor(ctx context.Context, path string) string
}

// BreedInfo is the descriptive part of a match.
type BreedInfo struct {
	Temperament string `json:"temperament"`
	Origin      string `json:"origin"`
	Size        string `json:"size"`
	LifeSpan    string `json:"lifeSpan"`
	Description string `json:"description"`
}

// Enricher attaches images and metadata to a matched breed. Every source
// is optional.
type Enricher struct {
	Metadata     MetadataSource
	Encyclopedia Encyclopedia
	Describer    Describer
	Images       ImageSource
	Logger       *zap.Logger
}

func (en *Enricher) logger() *zap.Logger {
	if en == nil || en.Logger == nil {
		return zap.NewNop()
	}
	return en.Logger
}

// image returns an image URL for e, or the fixed default.
func (en *Enricher) image(ctx context.Context, e catalog.Entry) string {
	if en == nil || en.Images == nil {
		return dogapi.DefaultImageURL
	}
	path := e.Path
	if path == "" {
		path = dogapi.BreedPath(e.Name)
	}
	return en.Images.ImageFor(ctx, path)
}

func (en *Enricher) metadata(ctx context.Context, name string) *dogapi.BreedInfo {
	if en == nil || en.Metadata == nil {
		return nil
	}
	info, err := en.Metadata.Lookup(ctx, name)
	if err != nil {
		en.logger().Debug("breed metadata unavailable", zap.String("breed", name), zap.Error(err))
		return nil
	}
	return info
}

// describe tries the encyclopedia and then the describer.
func (en *Enricher) describe(ctx context.Context, name string) string {
	if en == nil {
		return DefaultDescription
	}
	if en.Encyclopedia != nil {
		if s, err := en.Encyclopedia.Summary(ctx, name); err == nil && s != "" {
			return s
		} else if err != nil {
			en.logger().Debug("encyclopedia summary unavailable", zap.String("breed", name), zap.Error(err))
		}
	}
	if en.Describer != nil {
		if s, err := en.Describer.Describe(ctx, name); err == nil && s != "" {
			return s
		} else if err != nil {
			en.logger().Warn("describer failed", zap.String("breed", name), zap.Error(err))
		}
	}
	return DefaultDescription
}

func sizeOf(info *dogapi.BreedInfo) string {
	return fmt.Sprintf("%s, %s", or(info.Height.Imperial, DefaultHeight), or(info.Weight.Imperial, DefaultWeight))
}

// dynamicInfo always returns info, filling gaps from the catalog entry.
func (en *Enricher) dynamicInfo(ctx context.Context, e catalog.Entry) *BreedInfo {
	temperament := strings.Join(e.Temperament, ", ")
	if temperament == "" {
		temperament = DefaultTemperament
	}

	info := en.metadata(ctx, e.Name)
	if info == nil {
		return &BreedInfo{
			Temperament: temperament,
			Origin:      DefaultOrigin,
			Size:        fmt.Sprintf("%s size", e.Size),
			LifeSpan:    DefaultLifeSpan,
			Description: en.describe(ctx, e.Name),
		}
	}

	desc := info.Description
	if desc == "" {
		desc = en.describe(ctx, e.Name)
	}
	return &BreedInfo{
		Temperament: or(info.Temperament, temperament),
		Origin:      or(info.Origin, DefaultOrigin),
		Size:        sizeOf(info),
		LifeSpan:    or(info.LifeSpan, DefaultLifeSpan),
		Description: desc,
	}
}

// staticInfo returns nil when no metadata exists. lookupDescription controls
// whether a missing description is looked up or replaced by a stock
// sentence.
func (en *Enricher) staticInfo(ctx context.Context, e catalog.Entry, lookupDescription bool) *BreedInfo {
	info := en.metadata(ctx, e.Name)
	if info == nil {
		return nil
	}

	desc := info.Description
	if desc == "" {
		if lookupDescription {
			desc = en.describe(ctx, e.Name)
		} else {
			desc = e.Name + companionsSuffix
		}
	}
	return &BreedInfo{
		Temperament: or(info.Temperament, DefaultTemperament),
		Origin:      or(info.Origin, UnknownOrigin),
		Size:        sizeOf(info),
		LifeSpan:    or(info.LifeSpan, DefaultLifeSpan),
		Description: desc,
	}
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
