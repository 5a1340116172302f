// Package photoanalyzer measures the coat colors of dog breeds from sample
// photos. Its output feeds the hair-color table of the breed catalog.
package photoanalyzer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"net/http"
	"slices"
	"time"

	"github.com/EdlinOrg/prominentcolor"
	"go.uber.org/zap"

	"github.com/kozaktomas/breed-twin/internal/color"
	"github.com/kozaktomas/breed-twin/internal/imaging"
)

// Mode selects how a photo is reduced to colors.
type Mode string

const (
	// ModeQuantize buckets pixels on a 16-level grid per channel.
	ModeQuantize Mode = "quantize"
	// ModeKmeans clusters pixels with k-means.
	ModeKmeans Mode = "kmeans"
)

const (
	maxAnalysisSize = 300
	sampleStride    = 4
	quantStep       = 16
	minAlpha        = 128
	photoColors     = 10
	dominantColors  = 5
	keptPhotos      = 3
	maxPhotoBytes   = 20 << 20
)

var (
	// ErrNoPhotos is returned when the image service has nothing for a breed.
	ErrNoPhotos = errors.New("no photos found")
	// ErrNoAnalyses is returned when every photo of a breed failed.
	ErrNoAnalyses = errors.New("no photo could be analyzed")
)

// ColorStat is one color cluster of a photo or of a breed profile.
type ColorStat struct {
	Name       string    `json:"name"`
	Hex        string    `json:"hex"`
	RGB        color.RGB `json:"rgb"`
	Frequency  int       `json:"frequency"`
	Percentage float64   `json:"percentage"`
}

func newStat(c color.RGB, freq int, pct float64) ColorStat {
	return ColorStat{Name: color.PhotoColor(c), Hex: c.Hex(), RGB: c, Frequency: freq, Percentage: pct}
}

// AnalyzeImage reduces img to its ten most frequent colors. The image is
// scaled to fit 300px first.
func AnalyzeImage(img *image.NRGBA, mode Mode) ([]ColorStat, error) {
	img = imaging.Fit(img, maxAnalysisSize)
	if mode == ModeKmeans {
		return kmeans(img)
	}
	return quantize(img), nil
}

type bucket struct {
	count   int
	r, g, b float64
}

// quantize samples every 4th pixel in raster order, skipping transparent
// ones. Percentages are relative to all pixels, sampled or not.
func quantize(img *image.NRGBA) []ColorStat {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	total := w * h

	index := make(map[color.RGB]int)
	var buckets []bucket
	for p := 0; p < total; p += sampleStride {
		x, y := p%w, p/w
		off := img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
		px := img.Pix[off : off+4 : off+4]
		if px[3] < minAlpha {
			continue
		}
		key := color.RGB{R: px[0] / quantStep * quantStep, G: px[1] / quantStep * quantStep, B: px[2] / quantStep * quantStep}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, bucket{})
		}
		bk := &buckets[i]
		bk.count++
		bk.r += float64(px[0])
		bk.g += float64(px[1])
		bk.b += float64(px[2])
	}

	stats := make([]ColorStat, 0, len(buckets))
	for _, bk := range buckets {
		n := float64(bk.count)
		c := color.RGB{R: round8(bk.r / n), G: round8(bk.g / n), B: round8(bk.b / n)}
		stats = append(stats, newStat(c, bk.count, float64(bk.count)/float64(total)*100))
	}
	return top(stats, photoColors)
}

func kmeans(img *image.NRGBA) ([]ColorStat, error) {
	items, err := prominentcolor.KmeansWithArgs(prominentcolor.ArgumentNoCropping, img)
	if err != nil {
		return nil, fmt.Errorf("unable to extract colors: %w", err)
	}
	total := 0
	for _, it := range items {
		total += it.Cnt
	}
	stats := make([]ColorStat, 0, len(items))
	for _, it := range items {
		c := color.RGB{R: uint8(it.Color.R), G: uint8(it.Color.G), B: uint8(it.Color.B)}
		pct := 0.0
		if total > 0 {
			pct = float64(it.Cnt) / float64(total) * 100
		}
		stats = append(stats, newStat(c, it.Cnt, pct))
	}
	return top(stats, photoColors), nil
}

// top sorts by frequency, keeping first-seen order among equals.
func top(stats []ColorStat, n int) []ColorStat {
	slices.SortStableFunc(stats, func(a, b ColorStat) int {
		return cmp.Compare(b.Frequency, a.Frequency)
	})
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

func round8(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 255)))
}

// Profile is the aggregated coat color of one breed.
type Profile struct {
	Dominant   []ColorStat `json:"dominantColors"`
	Overall    ColorStat   `json:"overall"`
	Variety    int         `json:"colorVariety"`
	Confidence int         `json:"confidence"`
	Samples    int         `json:"samples"`
}

// Aggregate merges per-photo colors by name. Group percentages are
// relative to the number of merged clusters, so they are only comparable
// within one profile.
func Aggregate(photos [][]ColorStat) Profile {
	type group struct {
		name      string
		freq      int
		r, g, b   float64
		instances int
	}

	index := make(map[string]int)
	var groups []group
	entries := 0
	var totalFreq, wr, wg, wb float64
	for _, stats := range photos {
		for _, s := range stats {
			entries++
			i, ok := index[s.Name]
			if !ok {
				i = len(groups)
				index[s.Name] = i
				groups = append(groups, group{name: s.Name})
			}
			g := &groups[i]
			g.freq += s.Frequency
			g.r += float64(s.RGB.R)
			g.g += float64(s.RGB.G)
			g.b += float64(s.RGB.B)
			g.instances++

			f := float64(s.Frequency)
			totalFreq += f
			wr += float64(s.RGB.R) * f
			wg += float64(s.RGB.G) * f
			wb += float64(s.RGB.B) * f
		}
	}

	p := Profile{Variety: len(groups), Confidence: Confidence(photos), Samples: len(photos)}
	dominant := make([]ColorStat, 0, len(groups))
	for _, g := range groups {
		n := float64(g.instances)
		c := color.RGB{R: round8(g.r / n), G: round8(g.g / n), B: round8(g.b / n)}
		s := newStat(c, g.freq, float64(g.freq)/float64(entries)*100)
		// The group keeps its name even if the averaged color drifts.
		s.Name = g.name
		dominant = append(dominant, s)
	}
	p.Dominant = top(dominant, dominantColors)

	overall := color.Neutral
	if totalFreq > 0 {
		overall = color.RGB{R: round8(wr / totalFreq), G: round8(wg / totalFreq), B: round8(wb / totalFreq)}
	}
	p.Overall = newStat(overall, int(totalFreq), 100)
	return p
}

// Confidence rates how much a set of photo analyses agree, from 0 to 100.
// Agreement weighs 0.7 and sample size 0.3, saturating at eight photos.
func Confidence(photos [][]ColorStat) int {
	if len(photos) == 0 {
		return 0
	}
	sample := min(float64(len(photos))/8, 1)
	return int(math.Round((consistency(photos)*0.7 + sample*0.3) * 100))
}

// consistency is the mean pairwise overlap of each photo's top three
// color names.
func consistency(photos [][]ColorStat) float64 {
	if len(photos) < 2 {
		return 1
	}
	names := make([][]string, len(photos))
	for i, stats := range photos {
		for _, s := range stats[:min(3, len(stats))] {
			names[i] = append(names[i], s.Name)
		}
	}

	total, comparisons := 0.0, 0
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			total += setSimilarity(names[i], names[j])
			comparisons++
		}
	}
	return total / float64(comparisons)
}

func setSimilarity(a, b []string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	common := 0
	for _, n := range a {
		if slices.Contains(b, n) {
			common++
		}
	}
	return float64(common) / float64(longest)
}

// ImageLister returns sample image URLs for a dog.ceo breed path.
type ImageLister interface {
	Images(ctx context.Context, path string, n int) ([]string, error)
}

// BreedAnalysis is the profile of one breed plus the photos it came from.
type BreedAnalysis struct {
	Breed  string   `json:"breed"`
	Path   string   `json:"path"`
	Mode   Mode     `json:"mode"`
	Photos []string `json:"photos"`
	Profile
}

// Analyzer downloads breed photos and profiles their colors.
type Analyzer struct {
	images ImageLister
	client *http.Client
	mode   Mode
	logger *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMode selects quantization or k-means.
func WithMode(m Mode) Option {
	return func(a *Analyzer) {
		if m != "" {
			a.mode = m
		}
	}
}

// WithHTTPClient sets the client used to download photos.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.client = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an Analyzer in quantize mode.
func New(images ImageLister, opts ...Option) *Analyzer {
	a := &Analyzer{
		images: images,
		client: &http.Client{Timeout: 30 * time.Second},
		mode:   ModeQuantize,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeBreed profiles breed from up to n photos. Photos that fail to
// download or decode are skipped.
func (a *Analyzer) AnalyzeBreed(ctx context.Context, breed, path string, n int) (*BreedAnalysis, error) {
	urls, err := a.images.Images(ctx, path, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos for %s: %w", breed, err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoPhotos, breed)
	}

	var photos [][]ColorStat
	for i, u := range urls {
		stats, err := a.analyzeURL(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Warn("photo skipped", zap.String("breed", breed), zap.Int("photo", i+1), zap.Error(err))
			continue
		}
		photos = append(photos, stats)
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoAnalyses, breed)
	}

	return &BreedAnalysis{
		Breed:   breed,
		Path:    path,
		Mode:    a.mode,
		Photos:  urls[:min(keptPhotos, len(urls))],
		Profile: Aggregate(photos),
	}, nil
}

func (a *Analyzer) analyzeURL(ctx context.Context, url string) ([]ColorStat, error) {
	data, err := a.download(ctx, url)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	return AnalyzeImage(img, a.mode)
}

func (a *Analyzer) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	return data, nil
}
