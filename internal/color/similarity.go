package color

import "strings"

// buckets groups color names that are treated as interchangeable when
// matching a person against a breed.
var buckets = [][]string{
	{Blonde, White, VeryLight, Light},
	{LightBrown, Brown, Medium, MediumLight},
	{DarkBrown, Black, Deep, Dark, MediumDark},
	{Red, Auburn, ReddishBrown},
	{Gray, "Silver"},
}

var bucketOf = func() map[string]int {
	m := make(map[string]int)
	for i, names := range buckets {
		for _, n := range names {
			m[n] = i
		}
	}
	return m
}()

// Similarity returns 1.0 for names in the same bucket, 0.7 when one name
// contains the other (case-insensitive), and 0 otherwise.
func Similarity(a, b string) float64 {
	ba, okA := bucketOf[a]
	bb, okB := bucketOf[b]
	if okA && okB && ba == bb {
		return 1.0
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return 0.7
	}
	return 0
}

// BestSimilarity returns the highest Similarity between name and any of
// candidates. An empty candidate list scores 0.
func BestSimilarity(name string, candidates []string) float64 {
	best := 0.0
	for _, c := range candidates {
		if s := Similarity(name, c); s > best {
			best = s
		}
	}
	return best
}

// Overlaps reports whether any name in a shares a substring relation with
// any name in b.
func Overlaps(a, b []string) bool {
	for _, x := range a {
		lx := strings.ToLower(x)
		for _, y := range b {
			ly := strings.ToLower(y)
			if strings.Contains(lx, ly) || strings.Contains(ly, lx) {
				return true
			}
		}
	}
	return false
}
