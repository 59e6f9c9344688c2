// Package options provides shared validation of mutually exclusive inputs.
package options

import (
	"fmt"
	"strings"
)

// Source names one way of providing an input and whether it was used.
type Source struct {
	Name string
	Set  bool
}

// ValidateSingleInputSource ensures exactly one of sources is set. The
// error lists the source names in order, e.g. "exactly one of file, url,
// or content must be provided (got 2)".
func ValidateSingleInputSource(sources ...Source) error {
	count := 0
	for _, s := range sources {
		if s.Set {
			count++
		}
	}
	if count == 1 {
		return nil
	}
	return fmt.Errorf("exactly one of %s must be provided (got %d)", listNames(sources), count)
}

func listNames(sources []Source) string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name
	}
	switch len(names) {
	case 0:
		return "nothing"
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
