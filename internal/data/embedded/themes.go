package embedded

import (
	"embed"
	"path"
	"sort"
	"strings"
)

//go:embed themes/*.yaml
var themeFiles embed.FS

// ThemeNames lists the embedded themes, sorted.
func ThemeNames() []string {
	entries, err := themeFiles.ReadDir("themes")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	sort.Strings(names)
	return names
}

// ThemeData returns the YAML of an embedded theme.
func ThemeData(name string) ([]byte, error) {
	return themeFiles.ReadFile(path.Join("themes", name+".yaml"))
}
