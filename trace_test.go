package blockstate

import "testing"

func TestExplainRecord(t *testing.T) {
	reg := stoneRegistry(t)

	hit := reg.ExplainRecord(NewRecord("minecraft:stone", "variant", "granite"))
	if !hit.Found || hit.ID != 17 || hit.Fallback != "" || hit.Result != "{Name:'minecraft:granite'}" {
		t.Fatalf("unexpected trace %+v", hit)
	}

	miss := reg.ExplainRecord(NewRecord("mod:unknown"))
	if miss.Found || miss.ID != -1 || miss.Fallback != FallbackPassThrough || miss.Result != miss.Input {
		t.Fatalf("unexpected trace %+v", miss)
	}
}

func TestExplainName(t *testing.T) {
	reg := stoneRegistry(t)

	hit := reg.ExplainName("minecraft:stone")
	if !hit.Found || hit.ID != 16 || hit.Result != "minecraft:stone" || hit.Source != TraceSourceName {
		t.Fatalf("unexpected trace %+v", hit)
	}
	if miss := reg.ExplainName("minecraft:granite"); miss.Found || miss.Result != "minecraft:granite" {
		t.Fatalf("unexpected trace %+v", miss)
	}
}

func TestExplainID(t *testing.T) {
	reg := stoneRegistry(t)

	backfilled := reg.ExplainID(20)
	if !backfilled.Found || !backfilled.Backfilled || backfilled.Input != "1:4" {
		t.Fatalf("unexpected trace %+v", backfilled)
	}

	outside := reg.ExplainID(5000)
	if outside.Found || outside.Fallback != FallbackSlotZero || outside.Result != "{Name:'minecraft:air'}" {
		t.Fatalf("unexpected trace %+v", outside)
	}

	empty := MustBuild([]Entry{{ID: 16, Canonical: stoneForm}}).ExplainID(0)
	if empty.Fallback != FallbackEmptyName || empty.Result != "{Name:'minecraft:air'}" {
		t.Fatalf("unexpected trace %+v", empty)
	}
}

func TestTraceJSONRoundTrip(t *testing.T) {
	reg := stoneRegistry(t)
	trace := reg.ExplainID(40)

	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if decoded != trace {
		t.Fatalf("expected %+v, got %+v", trace, decoded)
	}
	if _, err := TraceFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected malformed payload to fail")
	}
}
