package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

func clampBar(pct float64, width int) (float64, int, int) {
	pct = min(max(pct, 0), 1)
	width = max(width, 2)
	filled := min(int(pct*float64(width)), width)
	return pct, filled, width - filled
}

// RenderProgress renders a savings progress bar like [████░░░░] 45%.
// The bar turns green as the product nears maturity.
func RenderProgress(pct float64, width int) string {
	pct, filled, empty := clampBar(pct, width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, empty)

	style := StyleGreen
	if pct < 0.33 {
		style = StyleDim
	} else if pct < 0.66 {
		style = StyleBlue
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

// RenderGoalBar renders spending against a monthly goal. Spending past
// 90% of the goal is yellow, past the goal red.
func RenderGoalBar(used float64, width int) string {
	_, filled, empty := clampBar(used, width)
	style := StyleGreen
	switch {
	case used > 1:
		style = StyleRed
	case used > 0.9:
		style = StyleYellow
	}
	return style.Render(strings.Repeat(filledBlock, filled)) + StyleDim.Render(strings.Repeat(emptyBlock, empty))
}
