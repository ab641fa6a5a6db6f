package components

import (
	"strings"
	"testing"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/safedrive-ia/safedrive/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{100, 3}, {81, 4}, {7, 7}, {5, 2}} {
		widths := LayoutRow(tc.total, tc.n)
		if len(widths) != tc.n {
			t.Fatalf("LayoutRow(%d, %d) returned %d widths", tc.total, tc.n, len(widths))
		}
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if sum != tc.total {
			t.Errorf("LayoutRow(%d, %d) sums to %d", tc.total, tc.n, sum)
		}
		if widths[0] < widths[len(widths)-1] {
			t.Errorf("first width should absorb the remainder: %v", widths)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowPadsToTallest(t *testing.T) {
	theme.SetActive("flexoki-dark")

	short := Panel("Short", "Content", 22, false)
	tall := Panel("Tall", "Line 1\nLine 2\nLine 3\nLine 4", 22, true)

	shortLines := len(strings.Split(short, "\n"))
	tallLines := len(strings.Split(tall, "\n"))
	if shortLines >= tallLines {
		t.Fatal("test setup error: short panel should be shorter than tall panel")
	}

	lines := strings.Split(CardRow([]string{tall, short}), "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no background styling: %q", i, lines[i])
		}
	}
}

func TestDayBarsHeight(t *testing.T) {
	values := []int{2, 1, 0, 3, 0, 1, 2}
	labels := []string{"8 oct", "9 oct", "10 oct", "11 oct", "12 oct", "13 oct", "14 oct"}

	out := DayBars(values, labels, theme.Active.Fatigue, 60, 6)
	// Six chart rows, the x axis and the label row.
	if got := strings.Count(out, "\n"); got != 7 {
		t.Fatalf("DayBars rendered %d newlines, want 7:\n%s", got, out)
	}
	if !strings.Contains(out, "14 oct") {
		t.Error("last label should always be drawn")
	}
}

func TestDayBarsFallsBackToSparkline(t *testing.T) {
	out := DayBars([]int{0, 4, 8}, nil, theme.Active.Fatigue, 10, 2)
	if strings.Contains(out, "\n") {
		t.Errorf("narrow chart should be a single-line sparkline, got %q", out)
	}
	if !strings.ContainsRune(out, '█') {
		t.Error("sparkline peak should render a full block")
	}
}

func TestPlaceLabels(t *testing.T) {
	if got := placeLabels([]string{"a", "b", "c"}, 7, 15); got != "a      b      c" {
		t.Errorf("placeLabels = %q", got)
	}
	// Crowded axis keeps only the last label, right-aligned.
	got := placeLabels([]string{"1 oct", "2 oct", "3 oct"}, 3, 9)
	if got != "    3 oct" {
		t.Errorf("crowded placeLabels = %q", got)
	}
}

func TestHBarsScaleToPeak(t *testing.T) {
	out := HBars([]Bar{{"feliz", 4}, {"triste", 2}, {"ira", 0}}, 6, 22, theme.Active.Emotion)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 bar lines, got %d", len(lines))
	}
	// barMax = 22 - 6 - 1 - 2 = 13
	if n := strings.Count(lines[0], "█"); n != 13 {
		t.Errorf("peak bar = %d blocks, want 13", n)
	}
	if n := strings.Count(lines[1], "█"); n != 6 {
		t.Errorf("half bar = %d blocks, want 6", n)
	}
	if n := strings.Count(lines[2], "█"); n != 0 {
		t.Errorf("zero count should draw no bar, got %d", n)
	}
}

func TestShareGaugeClamps(t *testing.T) {
	if out := ShareGauge("Positive", 150, 9, 20); !strings.Contains(out, "100.0%") {
		t.Errorf("share above 100 should clamp: %q", out)
	}
	if out := ShareGauge("", -3, 0, 20); !strings.Contains(out, "0.0%") {
		t.Errorf("negative share should clamp: %q", out)
	}
}

func TestColorForShare(t *testing.T) {
	th := theme.Active
	cases := []struct {
		pct  float64
		want lipgloss.Color
	}{
		{75, th.Positive},
		{60, th.Positive},
		{45.5, th.Warning},
		{20, th.Fatigue},
		{0, th.Alarm},
	}
	for _, c := range cases {
		if got := ColorForShare(c.pct); got != c.want {
			t.Errorf("ColorForShare(%v) = %v, want %v", c.pct, got, c.want)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	for i, tab := range Tabs {
		if got := TabIdxByKey(tab.Key); got != i {
			t.Errorf("TabIdxByKey(%q) = %d, want %d", tab.Key, got, i)
		}
		if unicode.ToLower(rune(tab.Name[tab.KeyPos])) != tab.Key {
			t.Errorf("tab %s: shortcut %q is not at position %d", tab.Name, tab.Key, tab.KeyPos)
		}
	}
	if TabIdxByKey('z') != -1 {
		t.Error("unknown key should return -1")
	}
}
