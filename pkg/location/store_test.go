package location

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateSequentialIDs(t *testing.T) {
	store := NewStore()

	for i := 0; i < 5; i++ {
		id := store.Create()
		assert.Equal(t, strconv.Itoa(i), id)

		rec, err := store.Get(id)
		require.NoError(t, err)
		assert.Equal(t, NewRecord(id), rec)
		assert.Equal(t, Connections{}, rec.Connections)
	}

	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, store.IDs())
	assert.Equal(t, 5, store.Len())
}

func TestStore_IDsAreNotReusedAfterDelete(t *testing.T) {
	store := NewStore()
	store.Create() // "0"
	store.Create() // "1"
	require.True(t, store.Delete("0"))

	// A count-based scheme would hand out "1" again here.
	id := store.Create()
	assert.Equal(t, "2", id)
	assert.Equal(t, []string{"1", "2"}, store.IDs())
}

func TestStore_UUIDAllocator(t *testing.T) {
	store := NewStore(WithIDAllocator(UUIDs{}))

	a := store.Create()
	b := store.Create()

	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestStore_GetMissing(t *testing.T) {
	store := NewStore()

	_, err := store.Get("9")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = store.Update("9", func(r *Record) { r.Terrain = "Swamp" })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateKeepsID(t *testing.T) {
	store := NewStore()
	id := store.Create()

	err := store.Update(id, func(r *Record) {
		r.ID = "hijacked"
		r.Terrain = "Forest"
		r.MonsterChance = "25"
	})
	require.NoError(t, err)

	rec, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "Forest", rec.Terrain)
	assert.Equal(t, "25", rec.MonsterChance)
	assert.False(t, store.Has("hijacked"))
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore()
	id := store.Create()

	rec, err := store.Get(id)
	require.NoError(t, err)
	rec.Terrain = "changed"

	again, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "", again.Terrain)
}

func TestStore_DeleteLeavesDanglingConnections(t *testing.T) {
	store := NewStore()
	store.Create() // "0"
	store.Create() // "1"

	require.NoError(t, store.Update("0", func(r *Record) { r.Connections.North = "1" }))
	require.True(t, store.Delete("1"))

	rec, err := store.Get("0")
	require.NoError(t, err)
	assert.Equal(t, "1", rec.Connections.North, "deletes do not cascade")

	assert.NotContains(t, store.NeighborOptions(), "1")
	assert.Equal(t, []DanglingRef{{From: "0", Direction: North, To: "1"}}, store.Dangling())
	assert.Equal(t, "0.n -> 1", store.Dangling()[0].String())
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	store := NewStore()
	store.Create()

	assert.False(t, store.Delete("5"))
	assert.True(t, store.Delete("0"))
	assert.False(t, store.Delete("0"))
	assert.Equal(t, 0, store.Len())
}

func TestStore_NeighborOptions(t *testing.T) {
	store := NewStore()
	assert.Equal(t, []string{""}, store.NeighborOptions())

	store.Create()
	store.Create()
	store.Create()
	assert.Equal(t, []string{"", "0", "1", "2"}, store.NeighborOptions())

	store.Delete("1")
	assert.Equal(t, []string{"", "0", "2"}, store.NeighborOptions())

	id := store.Create()
	assert.Equal(t, []string{"", "0", "2", id}, store.NeighborOptions())
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore()
	store.Create()
	store.Create()
	store.Create()
	require.NoError(t, store.Update("0", func(r *Record) {
		r.Terrain = "Forest"
		r.MonsterChance = "25"
		r.Description = "Tall pines.\nA narrow path."
		r.Connections.East = "2"
	}))
	require.NoError(t, store.Update("2", func(r *Record) {
		r.Image = "images/cave.gif"
		r.ShortDescription = "A cave <dark> & damp"
		r.Connections.West = "0"
	}))
	store.Delete("1")

	data, err := store.Serialize()
	require.NoError(t, err)

	loaded := NewStore()
	require.NoError(t, loaded.Load(data))

	assert.Equal(t, store.IDs(), loaded.IDs())
	for _, id := range store.IDs() {
		want, _ := store.Get(id)
		got, err := loaded.Get(id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	again, err := loaded.Serialize()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again), "serialization is stable")
}

func TestStore_SerializeFormat(t *testing.T) {
	store := NewStore()
	store.Create()

	data, err := store.Serialize()
	require.NoError(t, err)

	want := `{
    "0": {
        "img": "",
        "connections": {
            "n": "",
            "e": "",
            "w": "",
            "s": "",
            "u": "",
            "d": ""
        },
        "description": "",
        "shortDescription": "",
        "terrain": "",
        "monsterChance": "0",
        "randomTreasureChance": "0",
        "dungeonChance": "0"
    }
}
`
	assert.Equal(t, want, string(data))
}

func TestStore_LoadPreservesKeyOrder(t *testing.T) {
	store := NewStore()
	data := []byte(`{"10": {"terrain": "a"}, "2": {"terrain": "b"}, "7": {"terrain": "c"}}`)

	require.NoError(t, store.Load(data))
	assert.Equal(t, []string{"10", "2", "7"}, store.IDs())

	// The counter resumes past the largest numeric id.
	assert.Equal(t, "11", store.Create())
}

func TestStore_LoadFailuresKeepPriorState(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"empty", "", ErrEmptyData},
		{"whitespace", "  \n", ErrEmptyData},
		{"malformed", `{"0": {`, ErrInvalidData},
		{"array", `[1, 2]`, ErrInvalidData},
		{"record not object", `{"0": "forest"}`, ErrInvalidData},
		{"wrong field type", `{"0": {"terrain": ["Forest"]}}`, ErrInvalidData},
		{"connections not object", `{"0": {"connections": "n"}}`, ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			store.Create()
			require.NoError(t, store.Update("0", func(r *Record) { r.Terrain = "Forest" }))

			err := store.Load([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPersistenceUnavailable)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, []string{"0"}, store.IDs())
			rec, getErr := store.Get("0")
			require.NoError(t, getErr)
			assert.Equal(t, "Forest", rec.Terrain)
		})
	}
}

func TestStore_LoadAcceptsScalarNumbers(t *testing.T) {
	store := NewStore()
	err := store.Load([]byte(`{
		"4": {"monsterChance": 25, "dungeonChance": 100, "terrain": "Hills",
		      "connections": {"n": 7, "e": "4", "d": true}},
		"7": {"randomTreasureChance": 0}
	}`))
	require.NoError(t, err)

	rec, err := store.Get("4")
	require.NoError(t, err)
	assert.Equal(t, "25", rec.MonsterChance)
	assert.Equal(t, "100", rec.DungeonChance)
	assert.Equal(t, DefaultChance, rec.RandomTreasureChance)
	assert.Equal(t, "Hills", rec.Terrain)
	assert.Equal(t, "7", rec.Connections.North)
	assert.Equal(t, "4", rec.Connections.East)
	assert.Equal(t, "true", rec.Connections.Down)

	other, err := store.Get("7")
	require.NoError(t, err)
	assert.Equal(t, "0", other.RandomTreasureChance)

	out, err := store.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"monsterChance": "25"`)
	assert.Contains(t, string(out), `"n": "7"`)
}

func TestStore_SaveReloadExample(t *testing.T) {
	store := NewStore()
	id := store.Create()
	require.NoError(t, store.Update(id, func(r *Record) {
		r.Terrain = "Forest"
		r.MonsterChance = "25"
	}))

	data, err := store.Serialize()
	require.NoError(t, err)

	fresh := NewStore()
	require.NoError(t, fresh.Load(data))

	rec, err := fresh.Get("0")
	require.NoError(t, err)
	assert.Equal(t, "Forest", rec.Terrain)
	assert.Equal(t, "25", rec.MonsterChance)
}
