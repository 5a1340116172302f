package dogapi

import (
	_ "embed"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/breed-twin/internal/lookup"
)

//go:embed paths.yaml
var pathsYAML []byte

var pathTable = sync.OnceValue(func() lookup.Table[string] {
	var f struct {
		Groups []lookup.Group[string] `yaml:"groups"`
	}
	if err := yaml.Unmarshal(pathsYAML, &f); err != nil {
		panic("dogapi: invalid embedded paths.yaml: " + err.Error())
	}
	return lookup.New(f.Groups, true)
})

// BreedPath maps a display name to its dog.ceo path: a known alias, then
// a known alias contained in (or containing) the name, then the name with
// spaces removed.
func BreedPath(name string) string {
	key := lookup.Normalize(name)
	return lookup.Resolve(key, strings.ReplaceAll(key, " ", ""), pathTable())
}

// PathFor returns the dog.ceo path of a breed or sub-breed.
func PathFor(breed, sub string) string {
	if sub == "" {
		return breed
	}
	return breed + "/" + sub
}
