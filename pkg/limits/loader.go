package limits

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadCatalog decodes a YAML catalog definition and validates it.
//
//	free:
//	  quotas: {projects: 1, automations: 3, ...}
//	  features: {api_access: false}
//	subscription:
//	  growth: {quotas: {...}, features: {...}}
//	appsumo:
//	  1: {quotas: {...}}
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var def CatalogDefinition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	return NewCatalog(def)
}

// LoadCatalogFile reads a YAML catalog from path.
// An empty path returns the default catalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	defer f.Close()
	return LoadCatalog(f)
}
