package openapi

type generatorConfig struct {
	openAPIVersion string
	info           openapiInfo
	path           string
	contentType    string
}

type openapiInfo struct {
	Title       string
	Version     string
	Description string
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		openAPIVersion: "3.0.3",
		info: openapiInfo{
			Title:   "Block States",
			Version: "1.0.0",
		},
		path:        "/blockstates/upgrade",
		contentType: "application/json",
	}
}

// GeneratorOption configures the document produced by Generate.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default: 3.0.3).
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version != "" {
			cfg.openAPIVersion = version
		}
	}
}

// InfoOption configures optional fields on the info section.
type InfoOption func(*openapiInfo)

// WithInfoDescription sets the info description.
func WithInfoDescription(description string) InfoOption {
	return func(info *openapiInfo) {
		info.Description = description
	}
}

// WithInfo configures the info block. Empty strings keep the defaults.
func WithInfo(title, version string, opts ...InfoOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.info.Title = title
		}
		if version != "" {
			cfg.info.Version = version
		}
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.info)
			}
		}
	}
}

// WithPath sets the path of the upgrade operation (default /blockstates/upgrade).
// An empty path omits the paths section.
func WithPath(path string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.path = path
	}
}
