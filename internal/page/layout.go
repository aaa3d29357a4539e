package page

import "strings"

// ResolveLayout picks the layout name for a page: a non-empty front matter
// layout wins verbatim, then a directory override for basePath, then defaultName.
// A nil overrides map behaves as empty.
func ResolveLayout(frontMatterLayout any, basePath string, overrides map[string]string, defaultName string) string {
	if name, ok := frontMatterLayout.(string); ok && name != "" {
		return name
	}
	if name, ok := overrides[normalizeBasePath(basePath)]; ok && name != "" {
		return name
	}
	return defaultName
}

// normalizeBasePath maps the pages root itself to "" and uses forward slashes,
// matching how page_layouts keys are written in configuration.
func normalizeBasePath(basePath string) string {
	basePath = strings.ReplaceAll(basePath, "\\", "/")
	basePath = strings.Trim(basePath, "/")
	if basePath == "." {
		return ""
	}
	return basePath
}
