package assets

// AssetLoader defines the contract for loading template sets.
type AssetLoader interface {
	// LoadTemplateSet loads the page template and partials stored under name.
	// Returns ErrTemplateSetNotFound if the set doesn't exist.
	// Returns ErrIncompleteTemplateSet if some files of the set are missing.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplateSet(name string) (*TemplateSet, error)
}
