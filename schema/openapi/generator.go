// Package openapi renders the canonical block states held by a frozen
// registry as an OpenAPI document, one component schema per block name.
package openapi

import (
	"fmt"
	"sort"

	blockstate "github.com/goliatone/go-blockstate"
)

const (
	// BlockStateComponent is the oneOf union over every block component.
	BlockStateComponent = "BlockState"
	// LegacyBlockComponent describes the request body of the upgrade operation.
	LegacyBlockComponent = "LegacyBlock"
)

// Generate builds an OpenAPI document describing every canonical record in
// reg. Component order follows reg.Schema, which is sorted by name.
func Generate(reg *blockstate.Registry, opts ...GeneratorOption) (map[string]any, error) {
	if reg == nil {
		return nil, fmt.Errorf("openapi: registry is nil")
	}
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	names := newComponentNames()
	names.claim(BlockStateComponent)
	names.claim(LegacyBlockComponent)

	schemas := map[string]any{}
	variants := []any{}
	for _, desc := range reg.Schema() {
		name := names.claim(desc.Name)
		schemas[name] = blockSchema(desc)
		variants = append(variants, componentRef(name))
	}
	schemas[BlockStateComponent] = map[string]any{
		"oneOf":         variants,
		"discriminator": map[string]any{"propertyName": "Name"},
	}
	schemas[LegacyBlockComponent] = legacyBlockSchema()

	info := map[string]any{
		"title":   cfg.info.Title,
		"version": cfg.info.Version,
	}
	if cfg.info.Description != "" {
		info["description"] = cfg.info.Description
	}
	doc := map[string]any{
		"openapi":    cfg.openAPIVersion,
		"info":       info,
		"components": map[string]any{"schemas": schemas},
	}
	if cfg.path != "" {
		doc["paths"] = map[string]any{cfg.path: upgradeOperation(cfg)}
	}
	return doc, nil
}

func blockSchema(desc blockstate.BlockDescriptor) map[string]any {
	props := map[string]any{
		"Name": map[string]any{"type": "string", "enum": []any{desc.Name}},
	}
	schema := map[string]any{
		"type":       "object",
		"required":   []any{"Name"},
		"properties": props,
		"x-legacy-ids": func() []any {
			ids := make([]any, 0, len(desc.IDs))
			for _, id := range desc.IDs {
				ids = append(ids, int(id))
			}
			return ids
		}(),
	}
	if len(desc.Properties) == 0 {
		return schema
	}
	stateProps := make(map[string]any, len(desc.Properties))
	required := make([]any, 0, len(desc.Properties))
	for key, values := range desc.Properties {
		enum := make([]any, 0, len(values))
		for _, v := range values {
			enum = append(enum, v)
		}
		stateProps[key] = map[string]any{"type": "string", "enum": enum}
	}
	for _, key := range sortedPropertyKeys(desc.Properties) {
		required = append(required, key)
	}
	props["Properties"] = map[string]any{
		"type":                 "object",
		"properties":           stateProps,
		"required":             required,
		"additionalProperties": false,
	}
	schema["required"] = []any{"Name", "Properties"}
	return schema
}

func legacyBlockSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": blockstate.TableSize - 1,
			},
			"record": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"Name": map[string]any{"type": "string"},
					"Properties": map[string]any{
						"type":                 "object",
						"additionalProperties": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func upgradeOperation(cfg generatorConfig) map[string]any {
	return map[string]any{
		"post": map[string]any{
			"operationId": "post:" + cfg.path,
			"summary":     "Upgrade a legacy block to its canonical state",
			"requestBody": map[string]any{
				"required": true,
				"content": map[string]any{
					cfg.contentType: map[string]any{"schema": componentRef(LegacyBlockComponent)},
				},
			},
			"responses": map[string]any{
				"200": map[string]any{
					"description": "Canonical block state",
					"content": map[string]any{
						cfg.contentType: map[string]any{"schema": componentRef(BlockStateComponent)},
					},
				},
			},
		},
	}
}

func sortedPropertyKeys(props map[string][]string) []string {
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
