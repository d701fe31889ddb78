package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-annotate/src/geometry"
)

func TestOrderTables(t *testing.T) {
	assert.Equal(t,
		[]Kind{KindText, KindBadge, KindStroke, KindArrow, KindEllipse, KindRect, KindHighlight},
		HitOrder())
	assert.Equal(t,
		[]Kind{KindRect, KindEllipse, KindHighlight, KindArrow, KindStroke, KindBadge, KindText},
		PaintOrder())
}

func TestKindNames(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	assert.Equal(t, "unknown", Kind(99).String())
	assert.True(t, KindText.Rotatable())
	assert.False(t, KindArrow.Rotatable())
	assert.False(t, KindBadge.Rotatable())
}

func TestCollectionAddRemoveByRef(t *testing.T) {
	var c Collection
	first := c.Add(Rect{ID: NewID(), Frame: geometry.R(0, 0, 10, 10)})
	second := c.Add(Rect{ID: NewID(), Frame: geometry.R(20, 0, 10, 10)})
	require.Equal(t, 2, c.Len(KindRect))

	require.True(t, c.Remove(first))
	i, ok := c.Index(second)
	require.True(t, ok, "later reference must survive removal of an earlier item")
	assert.Equal(t, 0, i)

	assert.False(t, c.Remove(first), "stale reference is a no-op")
	assert.False(t, c.Replace(Rect{ID: first.ID}))
	assert.Equal(t, 1, c.Total())
}

func TestCollectionCloneIsDeep(t *testing.T) {
	var c Collection
	ref := c.Add(Stroke{ID: NewID(), Points: []geometry.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}})
	clone := c.Clone()

	c.Strokes[0].Points[0] = geometry.Pt(50, 50)
	got, ok := clone.Get(ref)
	require.True(t, ok)
	assert.Equal(t, geometry.Pt(1, 1), got.(Stroke).Points[0])
}

func TestSnapshotRestoreIsolated(t *testing.T) {
	var c Collection
	c.Add(Badge{ID: NewID(), Center: geometry.Pt(5, 5), Number: 1})
	snap := Capture(c, 2)

	restored, counter := snap.Restore()
	restored.Badges[0].Number = 9
	assert.Equal(t, 2, counter)
	assert.Equal(t, 1, snap.Items.Badges[0].Number)
}

func TestRemoveLastLeavesNil(t *testing.T) {
	var c Collection
	ref := c.Add(Text{ID: NewID(), Text: "x"})
	require.True(t, c.Remove(ref))
	assert.Nil(t, c.Texts)
	assert.Equal(t, Collection{}, c)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("Blue")
	require.NoError(t, err)
	assert.Equal(t, rgb(0, 122, 255), c)

	c, err = ParseColor("#102030")
	require.NoError(t, err)
	assert.Equal(t, rgb(0x10, 0x20, 0x30), c)

	c, err = ParseColor("#10203080")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), c.A)

	_, err = ParseColor("chartreuse")
	assert.Error(t, err)
	assert.Len(t, Palette, 30)
}

func TestWithAlpha(t *testing.T) {
	assert.Equal(t, uint8(64), WithAlpha(DefaultColor, HighlightAlpha).A)
	assert.Equal(t, uint8(255), WithAlpha(DefaultColor, 2).A)
}
