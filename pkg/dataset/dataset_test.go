package dataset

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	blockstate "github.com/goliatone/go-blockstate"
	"github.com/stretchr/testify/require"
)

func TestLoadYAML(t *testing.T) {
	file, err := Load(filepath.Join("testdata", "legacy_blocks.yaml"))
	require.NoError(t, err)
	require.Equal(t, 1, file.Version)
	require.Len(t, file.Entries, 19)

	// block/meta addressed entries are rewritten to ids.
	require.Equal(t, 80, file.Entries[13].ID)
	require.Equal(t, 81, file.Entries[14].ID)
	require.Equal(t, "{Name:'minecraft:oak_planks'}", file.Entries[13].Canonical)
}

func TestLoadJSONCarriesEmptyName(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("testdata", "legacy_blocks.json"))
	require.NoError(t, err)
	require.Equal(t, "minecraft:void_air", reg.EmptyName())
	require.Equal(t, "minecraft:void_air", reg.UpgradeID(4095))

	// slot 0 is unset so CanonicalFor falls back to the sentinel record.
	require.Equal(t, blockstate.Record{Name: "minecraft:void_air"}, reg.CanonicalFor(5000))

	got := reg.UpgradeRecord(blockstate.NewRecord("minecraft:flowing_water", "level", "1"))
	require.True(t, got.Equal(blockstate.NewRecord("minecraft:water", "level", "1")), got.String())

	// 8:2..8:15 inherit the first registration of block 8.
	require.True(t, reg.Backfilled(blockstate.MakeLegacyID(8, 7)))
	require.Equal(t, "{Name:'minecraft:water',Properties:{level:'0'}}", reg.CanonicalFor(blockstate.MakeLegacyID(8, 7)).String())
}

func TestExplicitOptionsOverrideFile(t *testing.T) {
	file, err := Load(filepath.Join("testdata", "legacy_blocks.json"))
	require.NoError(t, err)

	reg, err := Build(file, blockstate.WithEmptyName("minecraft:cave_air"))
	require.NoError(t, err)
	require.Equal(t, "minecraft:cave_air", reg.UpgradeID(-1))
}

func TestDatasetRegistryBehaviour(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("testdata", "legacy_blocks.yaml"))
	require.NoError(t, err)

	cases := []struct {
		name string
		old  blockstate.Record
		want string
	}{
		{"granite", blockstate.NewRecord("minecraft:stone", "variant", "granite"), "{Name:'minecraft:granite'}"},
		{"snowy grass", blockstate.NewRecord("minecraft:grass", "snowy", "true"), "{Name:'minecraft:grass_block',Properties:{snowy:'false'}}"},
		{"podzol", blockstate.NewRecord("minecraft:dirt", "snowy", "false", "variant", "podzol"), "{Name:'minecraft:podzol',Properties:{snowy:'false'}}"},
		{"unknown passes through", blockstate.NewRecord("mod:widget", "mode", "x"), "{Name:'mod:widget',Properties:{mode:'x'}}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, reg.UpgradeRecord(tc.old).String())
		})
	}

	// First registration using a legacy name keeps it.
	require.Equal(t, "minecraft:stone", reg.UpgradeName("minecraft:stone"))
	require.Equal(t, "minecraft:dirt", reg.UpgradeName("minecraft:dirt"))
	require.Equal(t, "minecraft:grass_block", reg.UpgradeName("minecraft:grass"))
	require.Equal(t, "minecraft:oak_sapling", reg.UpgradeName("minecraft:sapling"))

	// Sapling stage 1 at 6:8 does not replace the group default from 6:0.
	require.Equal(t, "{Name:'minecraft:oak_sapling',Properties:{stage:'0'}}", reg.CanonicalFor(blockstate.MakeLegacyID(6, 3)).String())
	require.Equal(t, "minecraft:oak_sapling", reg.UpgradeID(blockstate.MakeLegacyID(6, 8)))

	require.Equal(t, "minecraft:air", reg.UpgradeID(blockstate.MakeLegacyID(200, 0)))
	require.Equal(t, "minecraft:polished_andesite", reg.UpgradeID(22))
	require.Equal(t, "minecraft:stone", reg.UpgradeID(31))
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name    string
		format  Format
		payload string
		match   string
	}{
		{"unknown field", FormatYAML, "version: 1\nentries:\n  - id: 1\n    canonical: \"{Name:'a'}\"\n    extra: true\n", "unknown field"},
		{"id and block", FormatYAML, "entries:\n  - id: 1\n    block: 0\n    canonical: \"{Name:'a'}\"\n", "both id and block/meta"},
		{"meta out of range", FormatJSON, `{"entries":[{"block":1,"meta":16,"canonical":"{Name:'a'}"}]}`, "out of range"},
		{"fractional block", FormatJSON, `{"entries":[{"block":1.5,"canonical":"{Name:'a'}"}]}`, "whole number"},
		{"missing canonical", FormatJSON, `{"entries":[{"id":3}]}`, "canonical form is required"},
		{"entries not a list", FormatYAML, "entries: nope\n", "entries must be a list"},
		{"malformed yaml", FormatYAML, "entries: [\n", "parse yaml"},
		{"unknown format", Format("toml"), "", "unknown format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.payload), tc.format)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.match)
		})
	}
}

func TestDecodeRejectsOutOfRangeID(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"entries":[{"id":4096,"canonical":"{Name:'a'}"}]}`), FormatJSON)
	require.Error(t, err)
	require.True(t, errors.Is(err, blockstate.ErrIDOutOfRange))
}

func TestBuildStopsAtFirstBadEntry(t *testing.T) {
	file := &File{Entries: []Entry{
		{ID: 1, Canonical: "{Name:'minecraft:stone'}"},
		{ID: 2, Canonical: "{Name:'minecraft:granite'"},
		{ID: 3, Canonical: "{Name:'minecraft:diorite'}"},
	}}
	reg, err := Build(file)
	require.Nil(t, reg)

	var regErr *blockstate.RegistrationError
	require.ErrorAs(t, err, &regErr)
	require.Equal(t, blockstate.LegacyID(2), regErr.ID)
}

func TestRegistrationsPreserveOrder(t *testing.T) {
	file := &File{Entries: []Entry{
		{ID: 17, Canonical: "{Name:'b'}", Variants: []string{"{Name:'x'}"}},
		{ID: 16, Canonical: "{Name:'a'}"},
	}}
	entries := file.Registrations()
	require.Len(t, entries, 2)
	require.Equal(t, blockstate.LegacyID(17), entries[0].ID)
	require.Equal(t, []string{"{Name:'x'}"}, entries[0].Variants)

	entries[0].Variants[0] = "mutated"
	require.Equal(t, "{Name:'x'}", file.Entries[0].Variants[0])

	reg, err := blockstate.Build(entries)
	require.NoError(t, err)
	// 17 registered first, so it is the group default.
	require.Equal(t, "b", reg.UpgradeID(31))
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{"a.json": FormatJSON, "b.YAML": FormatYAML, "c.yml": FormatYAML} {
		got, err := FormatFromPath(path)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := FormatFromPath("d.txt")
	require.ErrorIs(t, err, ErrUnknownFormat)
}
