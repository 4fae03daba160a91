package blockstate

import (
	"encoding/json"
)

// TraceSource names the store a lookup consulted.
type TraceSource string

const (
	TraceSourceRecord TraceSource = "record"
	TraceSourceName   TraceSource = "name"
	TraceSourceID     TraceSource = "id"
)

// Fallback reasons recorded on a Trace when the lookup did not resolve to a
// set slot.
const (
	FallbackPassThrough = "pass-through"
	FallbackSlotZero    = "slot-zero"
	FallbackEmptyName   = "empty-name"
)

// Trace captures how a single upgrade query was resolved.
type Trace struct {
	Source TraceSource `json:"source"`
	Input  string      `json:"input"`
	ID     int         `json:"id"`
	Found  bool        `json:"found"`
	// Backfilled is set when the resolved slot came from its group default.
	Backfilled bool   `json:"backfilled,omitempty"`
	Fallback   string `json:"fallback,omitempty"`
	Result     string `json:"result"`
}

// ExplainRecord traces UpgradeRecord.
func (r *Registry) ExplainRecord(old Record) Trace {
	t := Trace{Source: TraceSourceRecord, Input: old.String(), ID: -1}
	id, ok := r.records[old.Key()]
	if ok {
		t.ID = int(id)
		t.Found = true
	}
	if !ok || r.table[id] == nil {
		t.Fallback = FallbackPassThrough
		t.Result = old.String()
		return t
	}
	t.Backfilled = r.backfilled[id]
	t.Result = r.table[id].String()
	return t
}

// ExplainName traces UpgradeName.
func (r *Registry) ExplainName(old string) Trace {
	t := Trace{Source: TraceSourceName, Input: old, ID: -1}
	id, ok := r.names[old]
	if ok {
		t.ID = int(id)
		t.Found = true
	}
	if !ok || r.table[id] == nil {
		t.Fallback = FallbackPassThrough
		t.Result = old
		return t
	}
	t.Backfilled = r.backfilled[id]
	t.Result = r.table[id].Name
	return t
}

// ExplainID traces CanonicalFor.
func (r *Registry) ExplainID(id LegacyID) Trace {
	t := Trace{Source: TraceSourceID, Input: id.String(), ID: int(id)}
	if id.Valid() && r.table[id] != nil {
		t.Found = true
		t.Backfilled = r.backfilled[id]
		t.Result = r.table[id].String()
		return t
	}
	if r.table[0] != nil {
		t.Fallback = FallbackSlotZero
	} else {
		t.Fallback = FallbackEmptyName
	}
	t.Result = r.fallback().String()
	return t
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
