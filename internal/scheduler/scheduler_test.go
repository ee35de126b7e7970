package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{name: "disjoint before", aStart: 480, aEnd: 540, bStart: 600, bEnd: 660, want: false},
		{name: "adjacent", aStart: 480, aEnd: 540, bStart: 540, bEnd: 600, want: false},
		{name: "adjacent reversed", aStart: 540, aEnd: 600, bStart: 480, bEnd: 540, want: false},
		{name: "partial", aStart: 540, aEnd: 630, bStart: 600, bEnd: 660, want: true},
		{name: "contained", aStart: 600, aEnd: 610, bStart: 480, bEnd: 1200, want: true},
		{name: "identical", aStart: 600, aEnd: 660, bStart: 600, bEnd: 660, want: true},
		{name: "one minute intersection", aStart: 480, aEnd: 541, bStart: 540, bEnd: 600, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// симметричность при перестановке пар аргументов
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestOverlaps_Exhaustive(t *testing.T) {
	for aStart := 0; aStart < 12; aStart++ {
		for aEnd := aStart + 1; aEnd <= 12; aEnd++ {
			for bStart := 0; bStart < 12; bStart++ {
				for bEnd := bStart + 1; bEnd <= 12; bEnd++ {
					got := Overlaps(aStart, aEnd, bStart, bEnd)
					require.Equal(t, got, Overlaps(bStart, bEnd, aStart, aEnd))

					if aEnd <= bStart || bEnd <= aStart {
						require.False(t, got)
						continue
					}
					// непустое пересечение
					require.True(t, got)
				}
			}
		}
	}
}

func TestInterval_ConflictsWith(t *testing.T) {
	busy := []Interval{{480, 540}, {600, 660}, {700, 720}}
	got := Interval{Start: 530, End: 610}.ConflictsWith(busy)
	assert.Equal(t, []Interval{{480, 540}, {600, 660}}, got)
	assert.Empty(t, Interval{Start: 540, End: 600}.ConflictsWith(busy))
}

func TestFindFreeSlot(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name      string
		duration  int
		busy      []Interval
		wantStart string
		wantEnd   string
		wantErr   error
	}{
		{
			name:      "empty day starts at opening",
			duration:  60,
			wantStart: "08:00",
			wantEnd:   "09:00",
		},
		{
			name:      "slot before the first booking",
			duration:  60,
			busy:      []Interval{{540, 600}},
			wantStart: "08:00",
			wantEnd:   "09:00",
		},
		{
			name:      "first fit after two bookings",
			duration:  90,
			busy:      []Interval{{480, 540}, {600, 660}},
			wantStart: "11:00",
			wantEnd:   "12:30",
		},
		{
			name:      "adjacent booking does not block",
			duration:  60,
			busy:      []Interval{{480, 540}},
			wantStart: "09:00",
			wantEnd:   "10:00",
		},
		{
			name:      "off-grid booking end rounds up to next step",
			duration:  30,
			busy:      []Interval{{480, 545}},
			wantStart: "09:15",
			wantEnd:   "09:45",
		},
		{
			name:      "last slot of the day",
			duration:  60,
			busy:      []Interval{{480, 1140}},
			wantStart: "19:00",
			wantEnd:   "20:00",
		},
		{
			name:      "whole window in one slot",
			duration:  720,
			wantStart: "08:00",
			wantEnd:   "20:00",
		},
		{
			name:      "booking outside window is irrelevant",
			duration:  60,
			busy:      []Interval{{0, 480}, {1200, 1439}},
			wantStart: "08:00",
			wantEnd:   "09:00",
		},
		{
			name:     "whole window occupied",
			duration: 30,
			busy:     []Interval{{480, 1200}},
			wantErr:  ErrNoFreeSlot,
		},
		{
			name:     "duration longer than window",
			duration: 721,
			wantErr:  ErrNoFreeSlot,
		},
		{
			name:     "gap shorter than duration",
			duration: 60,
			busy:     []Interval{{480, 600}, {645, 1200}},
			wantErr:  ErrNoFreeSlot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := p.FindFreeSlot(tt.duration, tt.busy)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, slot.StartHHMM())
			assert.Equal(t, tt.wantEnd, slot.EndHHMM())
		})
	}
}

func TestFindFreeSlot_FullWindowAnyDuration(t *testing.T) {
	p := DefaultPolicy()
	for d := 1; d <= 720; d++ {
		_, err := p.FindFreeSlot(d, []Interval{{480, 1200}})
		require.ErrorIs(t, err, ErrNoFreeSlot, "duration %d", d)
	}
}

func TestFindFreeSlot_Deterministic(t *testing.T) {
	p := DefaultPolicy()
	busy := []Interval{{600, 660}, {480, 540}}

	first, err := p.FindFreeSlot(90, busy)
	require.NoError(t, err)
	for range 10 {
		again, err := p.FindFreeSlot(90, busy)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, Slot{Start: 660, End: 750}, first)
}

func TestFindFreeSlot_NonPositiveDurationUsesDefault(t *testing.T) {
	p := DefaultPolicy()
	slot, err := p.FindFreeSlot(0, nil)
	require.NoError(t, err)
	assert.Equal(t, Slot{Start: 480, End: 540}, slot)
}

func TestParseDuration(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 90, p.ParseDuration("90"))
	assert.Equal(t, 45, p.ParseDuration(" 45 "))
	assert.Equal(t, 60, p.ParseDuration(""))
	assert.Equal(t, 60, p.ParseDuration("abc"))
	assert.Equal(t, 60, p.ParseDuration("0"))
	assert.Equal(t, 60, p.ParseDuration("-30"))
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 480, p.DayStart)
	assert.Equal(t, 1200, p.DayEnd)
	assert.Equal(t, 15, p.Step)
	assert.Equal(t, 30, p.MinDuration)
	assert.Equal(t, 60, p.DefaultDuration)
}
