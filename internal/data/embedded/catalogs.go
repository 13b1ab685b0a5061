// Package embedded provides access to the embedded catalog and theme data files.
package embedded

import _ "embed"

// ModelsCatalogData contains the embedded model catalog YAML data.
//
//go:embed catalogs/models.yaml
var ModelsCatalogData []byte

// ParametersCatalogData contains the embedded completion parameter catalog YAML data.
//
//go:embed catalogs/parameters.yaml
var ParametersCatalogData []byte

// ActionsCatalogData contains the embedded slash action catalog YAML data.
//
//go:embed catalogs/actions.yaml
var ActionsCatalogData []byte
