// Package codec provides interchangeable wire encodings for bundles.
//
// Every codec renders a bundle through its ordered bundle.Object form and
// rebuilds it with bundle.FromObject, so all formats agree on key order and
// on which shapes are structurally invalid.
package codec

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/syssam/graphbundle/bundle"
)

// Codec encodes and decodes bundles in one wire format.
type Codec interface {
	// Name is the short format name used by Lookup, e.g. "json".
	Name() string
	// Extensions lists file extensions handled by the codec, without dot.
	Extensions() []string
	ContentType() string
	Marshal(b *bundle.Bundle) ([]byte, error)
	Unmarshal(data []byte) (*bundle.Bundle, error)
}

var (
	mu     sync.RWMutex
	codecs = make(map[string]Codec)
)

func init() {
	for _, c := range []Codec{JSON{}, YAML{}, MsgPack{}, BSON{}} {
		Register(c)
	}
}

// Register makes a codec available by name and extension. Registering a
// name twice replaces the earlier codec.
func Register(c Codec) {
	mu.Lock()
	defer mu.Unlock()
	codecs[strings.ToLower(c.Name())] = c
}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()
	if c, ok := codecs[strings.ToLower(name)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("graphbundle/codec: unknown format %q", name)
}

// ForPath picks a codec from a file name's extension.
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return nil, fmt.Errorf("graphbundle/codec: cannot infer format of %q", path)
	}
	mu.RLock()
	defer mu.RUnlock()
	for _, name := range sortedNames() {
		if slices.Contains(codecs[name].Extensions(), ext) {
			return codecs[name], nil
		}
	}
	return nil, fmt.Errorf("graphbundle/codec: no format for extension %q", ext)
}

// Names returns the registered format names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return sortedNames()
}

func sortedNames() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
