package blockstate

import (
	"sort"
)

// BlockDescriptor summarizes every canonical record sharing a name.
type BlockDescriptor struct {
	Name string `json:"name"`
	// Properties maps each property key to the sorted set of values observed.
	Properties map[string][]string `json:"properties,omitempty"`
	// IDs lists the legacy ids whose slot holds this name, in id order.
	IDs []LegacyID `json:"ids"`
	// Registered counts the ids that were registered rather than backfilled.
	Registered int `json:"registered"`
}

// Schema derives one descriptor per canonical name, sorted by name.
func (r *Registry) Schema() []BlockDescriptor {
	byName := map[string]*BlockDescriptor{}
	values := map[string]map[string]map[string]struct{}{}
	for i, slot := range r.table {
		if slot == nil {
			continue
		}
		desc, ok := byName[slot.Name]
		if !ok {
			desc = &BlockDescriptor{Name: slot.Name}
			byName[slot.Name] = desc
			values[slot.Name] = map[string]map[string]struct{}{}
		}
		desc.IDs = append(desc.IDs, LegacyID(i))
		if !r.backfilled[i] {
			desc.Registered++
		}
		for key, value := range slot.Properties {
			set, ok := values[slot.Name][key]
			if !ok {
				set = map[string]struct{}{}
				values[slot.Name][key] = set
			}
			set[value] = struct{}{}
		}
	}

	out := make([]BlockDescriptor, 0, len(byName))
	for name, desc := range byName {
		if len(values[name]) > 0 {
			desc.Properties = make(map[string][]string, len(values[name]))
			for key, set := range values[name] {
				desc.Properties[key] = sortedKeys(set)
			}
		}
		out = append(out, *desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
