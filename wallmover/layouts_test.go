package wallmover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidgames-ws/grid"
	"kidgames-ws/wire"
)

func TestShelfEvictsOldest(t *testing.T) {
	shelf := NewShelf()
	s := New()
	now := time.Now()

	var codes []string
	for i := 0; i < ShelfCap+5; i++ {
		meta := shelf.Save(s.snapshotLayout(), now.Add(time.Duration(i)*time.Second))
		codes = append(codes, meta.Code)
	}

	assert.Equal(t, ShelfCap, shelf.Len())
	for _, c := range codes[:5] {
		_, ok := shelf.get(c)
		assert.False(t, ok, "evicted code %s still retrievable", c)
	}
	for _, c := range codes[5:] {
		_, ok := shelf.get(c)
		assert.True(t, ok, "recent code %s lost", c)
	}

	list := shelf.List()
	require.Len(t, list, ShelfCap)
	assert.Equal(t, codes[5], list[0].Code)
	assert.Equal(t, codes[len(codes)-1], list[ShelfCap-1].Code)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	sim := NewSim()
	now := time.Now()
	st := sim.state
	require.True(t, st.SetMode("freeform"))

	require.True(t, st.SetWallEdge(3, 3, "RIGHT", true))
	st.Apples = nil
	require.True(t, st.PlaceCollectible("apple", 7, 7))

	reply := sim.Handle(1, "save_layout", []byte(`{"type":"save_layout"}`), now)
	ok, isOK := reply.(saveLayoutOK)
	require.True(t, isOK, "unexpected reply %#v", reply)
	assert.Equal(t, "save_layout_ok", ok.Type)
	assert.Len(t, ok.Code, 8)

	// Wreck the board, then load the save back.
	st.SetLevel(3)
	assert.False(t, st.Walls.Has(3, 3, grid.Right))

	reply = sim.Handle(1, "load_layout", []byte(`{"type":"load_layout","code":"`+ok.Code+`"}`), now)
	loaded, isLoaded := reply.(loadLayoutOK)
	require.True(t, isLoaded, "unexpected reply %#v", reply)
	assert.Equal(t, ok.Code, loaded.Code)

	assert.Equal(t, ModeFreeform, st.Mode)
	assert.True(t, st.Walls.Has(3, 3, grid.Right))
	assert.True(t, hasPointAt(st.Apples, 7, 7))
	assert.False(t, st.Testing)
	assert.False(t, st.Win)
}

func TestLoadRejectsBadCodes(t *testing.T) {
	sim := NewSim()
	now := time.Now()

	reply := sim.Handle(1, "load_layout", []byte(`{"type":"load_layout","code":"12ab"}`), now)
	e, isErr := reply.(wire.Error)
	require.True(t, isErr)
	assert.Contains(t, e.Message, "8 digits")

	reply = sim.Handle(1, "load_layout", []byte(`{"type":"load_layout","code":"00000000"}`), now)
	e, isErr = reply.(wire.Error)
	require.True(t, isErr)
	assert.Equal(t, "Save not found", e.Message)
}

func TestSaveRejectedDuringTestRun(t *testing.T) {
	sim := NewSim()
	now := time.Now()
	sim.state.SetPlayerConnected(1, true)
	sim.state.StartPlay(1)

	reply := sim.Handle(1, "save_layout", []byte(`{"type":"save_layout"}`), now)
	_, isErr := reply.(wire.Error)
	assert.True(t, isErr)
}

func TestListSavesReply(t *testing.T) {
	sim := NewSim()
	now := time.Now()

	reply := sim.Handle(1, "list_saves", []byte(`{"type":"list_saves"}`), now)
	list, isList := reply.(saveList)
	require.True(t, isList)
	assert.Empty(t, list.Saves)

	sim.Handle(1, "save_layout", []byte(`{"type":"save_layout"}`), now)
	sim.Handle(1, "save_layout", []byte(`{"type":"save_layout"}`), now)

	reply = sim.Handle(1, "list_saves", []byte(`{"type":"list_saves"}`), now)
	list = reply.(saveList)
	assert.Len(t, list.Saves, 2)
}
