package countdown

import (
	"fmt"
	"testing"
	"time"

	"github.com/borgmon/reminder-clock/pkg/clock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(h, m, s int, p clock.Period) clock.Sample {
	return clock.Sample{Hour12: h, Minute: m, Second: s, Period: p}
}

func TestParse_AllValidTimesRoundTrip(t *testing.T) {
	for _, period := range []clock.Period{clock.AM, clock.PM} {
		for hour := 1; hour <= 12; hour++ {
			for minute := 0; minute <= 59; minute++ {
				raw := fmt.Sprintf("%d:%02d %s", hour, minute, period)
				got, ok := Parse(raw)
				require.True(t, ok, raw)
				require.Equal(t, ParsedTime{Hour12: hour, Minute: minute, Period: period}, got, raw)
				require.Equal(t, raw, got.String())
			}
		}
	}
}

func TestParse_Accepted(t *testing.T) {
	tests := []struct {
		raw  string
		want ParsedTime
	}{
		{"09:05 AM", ParsedTime{9, 5, clock.AM}},
		{"  7:30pm  ", ParsedTime{7, 30, clock.PM}},
		{"12:00AM", ParsedTime{12, 0, clock.AM}},
		{"12:59   Pm", ParsedTime{12, 59, clock.PM}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Parse(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Rejected(t *testing.T) {
	for _, raw := range []string{
		"",
		"0:30 AM",
		"00:30 AM",
		"13:00 PM",
		"9:60 AM",
		"9:5 AM",
		"9:05",
		"9:05 XM",
		"9.05 AM",
		"9:05 AM extra",
		"tomorrow 9:05 AM",
		"123:05 AM",
		"９:05 AM",
	} {
		t.Run(raw, func(t *testing.T) {
			_, ok := Parse(raw)
			assert.False(t, ok)
		})
	}
}

func TestCompute_Examples(t *testing.T) {
	tests := []struct {
		name    string
		current clock.Sample
		target  string
		want    Remaining
	}{
		{
			name:    "wraps across midnight",
			current: sample(11, 59, 30, clock.PM),
			target:  "12:00 AM",
			want:    Remaining{Hours: 0, Minutes: 0, Seconds: 30, TotalSeconds: 30},
		},
		{
			name:    "same morning",
			current: sample(9, 0, 0, clock.AM),
			target:  "09:05 AM",
			want:    Remaining{Hours: 0, Minutes: 5, Seconds: 0, TotalSeconds: 300},
		},
		{
			name:    "noon is hour twelve",
			current: sample(11, 0, 0, clock.AM),
			target:  "12:00 PM",
			want:    Remaining{Hours: 1, Minutes: 0, Seconds: 0, TotalSeconds: 3600},
		},
		{
			name:    "earlier today means tomorrow",
			current: sample(3, 0, 0, clock.PM),
			target:  "2:59 PM",
			want:    Remaining{Hours: 23, Minutes: 59, Seconds: 0, TotalSeconds: 86340},
		},
		{
			name:    "exact match is a full day away",
			current: sample(7, 30, 0, clock.AM),
			target:  "7:30 AM",
			want:    Remaining{Hours: 24, Minutes: 0, Seconds: 0, TotalSeconds: SecondsPerDay},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComputeRaw(tt.current, tt.target)
			require.True(t, ok)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Compute() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompute_AlwaysWithinOneDay(t *testing.T) {
	targets := []string{"12:00 AM", "6:15 AM", "12:00 PM", "11:59 PM"}
	for h := 1; h <= 12; h++ {
		for _, p := range []clock.Period{clock.AM, clock.PM} {
			for _, sec := range []int{0, 29, 59} {
				current := sample(h, 17, sec, p)
				for _, target := range targets {
					got, ok := ComputeRaw(current, target)
					require.True(t, ok)
					assert.Greater(t, got.TotalSeconds, 0)
					assert.LessOrEqual(t, got.TotalSeconds, SecondsPerDay)
					assert.Equal(t, got.TotalSeconds, got.Hours*3600+got.Minutes*60+got.Seconds)
				}
			}
		}
	}
}

func TestCompute_Absent(t *testing.T) {
	_, ok := ComputeRaw(clock.Sample{}, "9:00 AM")
	assert.False(t, ok, "no period yet")

	_, ok = ComputeRaw(sample(9, 0, 0, clock.AM), "nine o'clock")
	assert.False(t, ok, "parse failure")
}

func TestRemaining_Text(t *testing.T) {
	r := Remaining{Hours: 1, Minutes: 2, Seconds: 3, TotalSeconds: 3723}
	assert.Equal(t, "- 01:02:03", r.Text())
	assert.Equal(t, "01", r.HourText())
}

type fixedSource struct{ s clock.Sample }

func (f *fixedSource) Latest() clock.Sample { return f.s }

func TestTracker_UsesLatestSampleAtReadTime(t *testing.T) {
	src := &fixedSource{s: sample(9, 0, 0, clock.AM)}
	tr := NewTracker(src)

	got, ok := tr.Remaining("9:01 AM")
	require.True(t, ok)
	assert.Equal(t, 60, got.TotalSeconds)

	src.s = sample(9, 0, 30, clock.AM)
	got, ok = tr.Remaining("9:01 AM")
	require.True(t, ok)
	assert.Equal(t, 30, got.TotalSeconds)
}

func TestTracker_WithClockSource(t *testing.T) {
	sampler, err := clock.NewSampler("Asia/Manila")
	require.NoError(t, err)
	m := clock.NewMock(time.Date(2026, 2, 18, 15, 59, 30, 0, time.UTC)) // 11:59:30 PM Manila
	src := clock.NewSource(m, sampler, clock.FineInterval)
	src.Refresh()

	got, ok := NewTracker(src).Remaining("12:00 AM")
	require.True(t, ok)
	assert.Equal(t, "- 00:00:30", got.Text())
}
