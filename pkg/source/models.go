package source

import (
	"slices"
	"strings"

	errs "github.com/matzehuels/layerscape/pkg/errors"
)

// ResolveModel returns the endpoint configured for a named model. Names are
// matched exactly first, then case-insensitively.
func ResolveModel(models map[string]string, name string) (string, error) {
	if err := errs.ValidateModelName(name); err != nil {
		return "", err
	}
	if endpoint, ok := models[name]; ok {
		return endpoint, nil
	}
	for k, endpoint := range models {
		if strings.EqualFold(k, name) {
			return endpoint, nil
		}
	}
	names := make([]string, 0, len(models))
	for k := range models {
		names = append(names, k)
	}
	slices.Sort(names)
	return "", errs.New(errs.ErrCodeNotFound, "unknown model %q (known: %s)", name, strings.Join(names, ", "))
}
