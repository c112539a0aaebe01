package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWindow(t *testing.T, start, end time.Time) Window {
	t.Helper()
	w, err := New(start, end)
	require.NoError(t, err)
	return w
}

func TestNewRejectsInvalidWindows(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := New(base, base)
	assert.Error(t, err, "zero-length window must be rejected")

	_, err = New(base.Add(time.Hour), base)
	assert.Error(t, err, "inverted window must be rejected")

	_, err = New(base, base.Add(time.Minute))
	assert.NoError(t, err)
}

func TestOverlapsIsSymmetric(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		a, b Window
		want bool
	}{
		{
			name: "disjoint",
			a:    mustWindow(t, base, base.Add(time.Hour)),
			b:    mustWindow(t, base.Add(2*time.Hour), base.Add(3*time.Hour)),
			want: false,
		},
		{
			name: "partial overlap",
			a:    mustWindow(t, base, base.Add(2*time.Hour)),
			b:    mustWindow(t, base.Add(time.Hour), base.Add(3*time.Hour)),
			want: true,
		},
		{
			name: "containment",
			a:    mustWindow(t, base, base.Add(4*time.Hour)),
			b:    mustWindow(t, base.Add(time.Hour), base.Add(2*time.Hour)),
			want: true,
		},
		{
			name: "back to back",
			a:    mustWindow(t, base, base.Add(time.Hour)),
			b:    mustWindow(t, base.Add(time.Hour), base.Add(2*time.Hour)),
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.a.Overlaps(tc.b), tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestOverlapsComparesInstantsNotWallClocks(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 10:00 UTC and 11:00 Berlin (CET, +1) are the same instant.
	a := mustWindow(t,
		time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 11, 0, 0, 0, time.UTC))
	b := mustWindow(t,
		time.Date(2026, 1, 15, 11, 30, 0, 0, berlin),
		time.Date(2026, 1, 15, 12, 30, 0, 0, berlin))

	assert.True(t, a.Overlaps(b), "windows overlapping as instants must overlap regardless of zone")
}

func TestContains(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	w := mustWindow(t, base, base.Add(time.Hour))

	assert.True(t, w.Contains(base), "start is included")
	assert.True(t, w.Contains(base.Add(30*time.Minute)))
	assert.False(t, w.Contains(base.Add(time.Hour)), "end is excluded")
	assert.False(t, w.Contains(base.Add(-time.Second)))
}

func TestIntersect(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	a := mustWindow(t, base, base.Add(2*time.Hour))
	b := mustWindow(t, base.Add(time.Hour), base.Add(3*time.Hour))

	overlap, ok := a.Intersect(b)
	require.True(t, ok)
	assert.Equal(t, base.Add(time.Hour), overlap.Start)
	assert.Equal(t, base.Add(2*time.Hour), overlap.End)

	c := mustWindow(t, base.Add(5*time.Hour), base.Add(6*time.Hour))
	_, ok = a.Intersect(c)
	assert.False(t, ok)
}

func TestMergeCoalescesOverlappingAndAdjacent(t *testing.T) {
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	in := []Window{
		mustWindow(t, base.Add(3*time.Hour), base.Add(4*time.Hour)),
		mustWindow(t, base, base.Add(time.Hour)),
		mustWindow(t, base.Add(time.Hour), base.Add(2*time.Hour)),        // adjacent to the first
		mustWindow(t, base.Add(90*time.Minute), base.Add(150*time.Minute)), // overlaps the previous
	}

	merged := Merge(in)
	require.Len(t, merged, 2)
	assert.Equal(t, base, merged[0].Start)
	assert.Equal(t, base.Add(150*time.Minute), merged[0].End)
	assert.Equal(t, base.Add(3*time.Hour), merged[1].Start)

	assert.Nil(t, Merge(nil))
}
