package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/safedrive-ia/safedrive/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a one-line unicode sparkline of per-day counts.
func Sparkline(values []int, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := 0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := 1 + v*(len(blocks)-2)/peak
		if v == 0 {
			idx = 1
		}
		buf.WriteRune(blocks[min(idx, len(blocks)-1)])
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// DayBars renders a vertical bar chart of per-day counts. labels, when it
// has one entry per value, is drawn along the x axis.
func DayBars(values []int, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	maxVal := 0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	tickStep := chartTickStep(maxVal)
	maxIntervals := max(height/2, 2)
	for (maxVal+tickStep-1)/tickStep > maxIntervals {
		tickStep *= 2
	}
	numIntervals := max((maxVal+tickStep-1)/tickStep, 1)
	ceiling := numIntervals * tickStep

	rowsPerTick := max(height/numIntervals, 1)
	chartH := rowsPerTick * numIntervals

	yLabelW := max(len(formatChartLabel(ceiling))+1, 4)
	tickLabels := make(map[int]string, numIntervals)
	for i := 1; i <= numIntervals; i++ {
		tickLabels[i*rowsPerTick] = formatChartLabel(tickStep * i)
	}

	chartW := max(width-yLabelW-1, 5)
	n := len(values)

	gap := 1
	if n == 1 {
		gap = 0
	}
	barW := chartW
	if n > 1 {
		barW = (chartW - (n - 1)) / n
	}
	if barW < 1 {
		// Too many days for the width: drop the gaps and sample.
		gap = 0
		barW = 1
		if n > chartW {
			sampled := make([]int, chartW)
			var sampledLabels []string
			if len(labels) == n {
				sampledLabels = make([]string, chartW)
			}
			for i := range sampled {
				src := i * (n - 1) / max(chartW-1, 1)
				sampled[i] = values[src]
				if sampledLabels != nil {
					sampledLabels[i] = labels[src]
				}
			}
			values, labels, n = sampled, sampledLabels, chartW
		}
	}
	barW = min(barW, 6)
	axisLen := n*barW + max(0, n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		rowTop := float64(ceiling) * float64(row) / float64(chartH)
		rowBottom := float64(ceiling) * float64(row-1) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		for i, iv := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			v := float64(iv)
			switch {
			case v >= rowTop:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := int((v - rowBottom) / (rowTop - rowBottom) * 8)
				idx = min(max(idx, 1), 8)
				b.WriteString(barStyle.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(placeLabels(labels, barW+gap, axisLen)))
	}
	return b.String()
}

// placeLabels spreads labels along an axis of axisLen runes, skipping any
// that would collide with the previous one. The last label is always kept.
func placeLabels(labels []string, stride, axisLen int) string {
	buf := []rune(strings.Repeat(" ", axisLen))
	lastEnd := -1
	put := func(pos int, lbl string) bool {
		r := []rune(lbl)
		if pos+len(r) > axisLen {
			pos = axisLen - len(r)
		}
		if pos < 0 || pos <= lastEnd {
			return false
		}
		copy(buf[pos:], r)
		lastEnd = pos + len(r)
		return true
	}

	n := len(labels)
	reserve := 0
	if n > 1 {
		reserve = len([]rune(labels[n-1])) + 1
	}
	for i := 0; i < n-1; i++ {
		if i*stride+len([]rune(labels[i])) > axisLen-reserve {
			break
		}
		put(i*stride, labels[i])
	}
	if n > 0 {
		put((n-1)*stride, labels[n-1])
	}
	return strings.TrimRight(string(buf), " ")
}

// Bar is one row of a horizontal distribution chart.
type Bar struct {
	Label string
	Count int
}

// HBars renders one horizontal bar per entry, scaled to the largest count.
func HBars(bars []Bar, labelW, width int, color lipgloss.Color) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	peak := 0
	for _, b := range bars {
		peak = max(peak, b.Count)
	}
	countW := len(formatChartLabel(peak))
	barMax := max(width-labelW-countW-2, 1)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, len(bars))
	for i, b := range bars {
		n := 0
		if peak > 0 {
			n = b.Count * barMax / peak
		}
		if b.Count > 0 && n == 0 {
			n = 1
		}
		lines[i] = labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(b.Label, labelW))) +
			blank.Render(" ") +
			barStyle.Render(strings.Repeat("█", n)) +
			blank.Render(strings.Repeat(" ", barMax-n+1)) +
			countStyle.Render(fmt.Sprintf("%*d", countW, b.Count))
	}
	return strings.Join(lines, "\n")
}

// chartTickStep computes a round tick interval targeting ~5 ticks.
func chartTickStep(maxVal int) int {
	if maxVal <= 5 {
		return 1
	}
	rough := float64(maxVal) / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	frac := rough / base

	var step float64
	switch {
	case frac < 1.5:
		step = base
	case frac < 3.5:
		step = 2 * base
	default:
		step = 5 * base
	}
	return max(int(step), 1)
}

func formatChartLabel(v int) string {
	switch {
	case v >= 1_000_000:
		if v%1_000_000 == 0 {
			return fmt.Sprintf("%dM", v/1_000_000)
		}
		return fmt.Sprintf("%.1fM", float64(v)/1e6)
	case v >= 10_000:
		if v%1000 == 0 {
			return fmt.Sprintf("%dk", v/1000)
		}
		return fmt.Sprintf("%.1fk", float64(v)/1e3)
	default:
		return fmt.Sprintf("%d", v)
	}
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
