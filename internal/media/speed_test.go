package media

import "testing"

func TestAtempoChain(t *testing.T) {
	tests := []struct {
		speed float64
		want  string
	}{
		{1.0, "atempo=1"},
		{1.5, "atempo=1.5"},
		{2.0, "atempo=2"},
		{0.5, "atempo=0.5"},
		{4.0, "atempo=2,atempo=2"},
		{3.0, "atempo=2,atempo=1.5"},
		{0.25, "atempo=0.5,atempo=0.5"},
		{0.3, "atempo=0.5,atempo=0.6"},
		{8.0, "atempo=2,atempo=2,atempo=2"},
	}

	for _, tt := range tests {
		t.Run(formatFactor(tt.speed), func(t *testing.T) {
			if got := atempoChain(tt.speed); got != tt.want {
				t.Errorf("atempoChain(%v) = %q, want %q", tt.speed, got, tt.want)
			}
		})
	}
}

func TestSpeedFilter(t *testing.T) {
	t.Run("with audio", func(t *testing.T) {
		got := speedFilter(2.0, true)
		want := "[0:v]setpts=PTS/2[v];[0:a]atempo=2[a]"
		if got != want {
			t.Errorf("speedFilter() = %q, want %q", got, want)
		}
	})

	t.Run("without audio", func(t *testing.T) {
		got := speedFilter(0.5, false)
		want := "[0:v]setpts=PTS/0.5[v]"
		if got != want {
			t.Errorf("speedFilter() = %q, want %q", got, want)
		}
	})
}
