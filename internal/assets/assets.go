package assets

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadTemplateSet loads a template set by name using the default embedded loader.
func LoadTemplateSet(name string) (*TemplateSet, error) {
	return defaultLoader.LoadTemplateSet(name)
}

// EmbeddedNames lists the built-in template set names.
func EmbeddedNames() []string {
	return defaultLoader.Names()
}
