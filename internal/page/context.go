package page

// MergeContext shallow-merges the four data layers into a new DataContext.
// Later layers win on key collision; nested maps are replaced whole, never
// merged. No input is modified.
func MergeContext(global, injected, frontMatter, computed map[string]any) DataContext {
	out := make(DataContext, len(global)+len(injected)+len(frontMatter)+len(computed))
	for _, layer := range []map[string]any{global, injected, frontMatter, computed} {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}
