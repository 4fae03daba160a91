package blockstate

// Registry is the frozen migration table produced by Builder.Freeze. All
// methods are read-only and safe for concurrent use. Query methods never fail:
// unknown input passes through unchanged and unknown ids resolve to the empty
// sentinel.
type Registry struct {
	id    string
	cfg   config
	stats Stats

	evaluator Evaluator
	engine    string

	table      [TableSize]*Record
	backfilled [TableSize]bool
	records    map[string]LegacyID
	names      map[string]LegacyID
}

// Stats summarizes a frozen registry.
type Stats struct {
	Registered int `json:"registered"`
	Variants   int `json:"variants"`
	Records    int `json:"records"`
	Names      int `json:"names"`
	Groups     int `json:"groups"`
	Set        int `json:"set"`
	Backfilled int `json:"backfilled"`
}

// ID returns the identifier assigned when the registry was frozen.
func (r *Registry) ID() string {
	return r.id
}

// EmptyName returns the sentinel name used for unknown ids.
func (r *Registry) EmptyName() string {
	return r.cfg.emptyName
}

// Stats returns counters captured at freeze time.
func (r *Registry) Stats() Stats {
	return r.stats
}

// Len returns the number of set slots.
func (r *Registry) Len() int {
	return r.stats.Set
}

// UpgradeRecord returns the canonical record old migrates to, or old itself
// when old was never registered as a variant. A nil and an empty property map
// are the same record and match the same variant.
func (r *Registry) UpgradeRecord(old Record) Record {
	id, ok := r.records[old.Key()]
	if !ok {
		return old
	}
	slot := r.table[id]
	if slot == nil {
		return old
	}
	return slot.Clone()
}

// UpgradeName maps a legacy block name to its canonical name, or returns old
// unchanged.
func (r *Registry) UpgradeName(old string) string {
	id, ok := r.names[old]
	if !ok {
		return old
	}
	slot := r.table[id]
	if slot == nil {
		return old
	}
	return slot.Name
}

// UpgradeID returns the canonical name stored for id, or the empty sentinel
// when id is out of range or unset.
func (r *Registry) UpgradeID(id LegacyID) string {
	if !id.Valid() {
		return r.cfg.emptyName
	}
	slot := r.table[id]
	if slot == nil {
		return r.cfg.emptyName
	}
	return slot.Name
}

// CanonicalFor returns the canonical record for id. Out of range and unset ids
// resolve to slot 0, and to a bare empty-name record if slot 0 is unset too.
func (r *Registry) CanonicalFor(id LegacyID) Record {
	if id.Valid() {
		if slot := r.table[id]; slot != nil {
			return slot.Clone()
		}
	}
	return r.fallback()
}

// UpgradeBlock is CanonicalFor addressed by block kind and metadata.
func (r *Registry) UpgradeBlock(block, meta int) Record {
	if block < 0 || block >= GroupCount || meta < 0 || meta > 0xF {
		return r.fallback()
	}
	return r.CanonicalFor(MakeLegacyID(block, meta))
}

// Canonical returns the record stored for id and whether the slot is set.
func (r *Registry) Canonical(id LegacyID) (Record, bool) {
	if !id.Valid() || r.table[id] == nil {
		return Record{}, false
	}
	return r.table[id].Clone(), true
}

// LookupRecord returns the legacy id a historical record was registered
// against.
func (r *Registry) LookupRecord(old Record) (LegacyID, bool) {
	id, ok := r.records[old.Key()]
	return id, ok
}

// LookupName returns the legacy id the first registration using name claimed.
func (r *Registry) LookupName(name string) (LegacyID, bool) {
	id, ok := r.names[name]
	return id, ok
}

// Backfilled reports whether the slot for id was filled from its group
// default rather than registered explicitly.
func (r *Registry) Backfilled(id LegacyID) bool {
	return id.Valid() && r.backfilled[id]
}

// Each calls fn for every set slot in id order until fn returns false.
func (r *Registry) Each(fn func(id LegacyID, canonical Record) bool) {
	for i, slot := range r.table {
		if slot == nil {
			continue
		}
		if !fn(LegacyID(i), slot.Clone()) {
			return
		}
	}
}

func (r *Registry) fallback() Record {
	if slot := r.table[0]; slot != nil {
		return slot.Clone()
	}
	return Record{Name: r.cfg.emptyName}
}

func (r *Registry) computeStats(registered, variants int) Stats {
	stats := Stats{
		Registered: registered,
		Variants:   variants,
		Records:    len(r.records),
		Names:      len(r.names),
	}
	var seen [GroupCount]bool
	for i, slot := range r.table {
		if slot == nil {
			continue
		}
		stats.Set++
		if r.backfilled[i] {
			stats.Backfilled++
		}
		if g := LegacyID(i).Group(); !seen[g] {
			seen[g] = true
			stats.Groups++
		}
	}
	return stats
}
