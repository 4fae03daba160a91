package openapi

import (
	"fmt"
	"regexp"
	"strings"
)

// componentNames hands out unique, OpenAPI safe component names.
type componentNames struct {
	used map[string]struct{}
}

func newComponentNames() *componentNames {
	return &componentNames{used: map[string]struct{}{}}
}

func (c *componentNames) claim(hint string) string {
	safe := sanitizeComponentName(hint)
	if safe == "" {
		safe = "Block"
	}
	if _, exists := c.used[safe]; !exists {
		c.used[safe] = struct{}{}
		return safe
	}
	for suffix := 1; ; suffix++ {
		candidate := fmt.Sprintf("%s%d", safe, suffix)
		if _, exists := c.used[candidate]; !exists {
			c.used[candidate] = struct{}{}
			return candidate
		}
	}
}

var componentNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// sanitizeComponentName turns a namespaced block name such as
// minecraft:oak_log into minecraft_oak_log.
func sanitizeComponentName(name string) string {
	name = strings.Trim(componentNameRegexp.ReplaceAllString(name, "_"), "_")
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func componentRef(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}
