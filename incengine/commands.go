package incengine

import (
	"fmt"
	"sort"

	"github.com/ovsrobot/ovn-sub001/ctlcmd"
)

// registerCommands wires inc-engine/show-stats, inc-engine/clear-stats,
// and inc-engine/recompute against reg (spec §6: control-socket
// commands).
func (e *Engine) registerCommands(reg ctlcmd.Registrar) {
	reg.RegisterCommand("inc-engine/show-stats", e.cmdShowStats)
	reg.RegisterCommand("inc-engine/clear-stats", e.cmdClearStats)
	reg.RegisterCommand("inc-engine/recompute", e.cmdRecompute)
}

func (e *Engine) cmdShowStats(args []string) string {
	var lines []string
	for _, rec := range e.order {
		base, ok := nodeBase(rec.node)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf(
			"%-32s state=%-9s recompute=%d compute=%d abort=%d",
			rec.node.Name(), rec.state, base.stats.Recompute, base.stats.Compute, base.stats.Abort))
	}
	sort.Strings(lines)
	return ctlcmd.Join(lines)
}

func (e *Engine) cmdClearStats(args []string) string {
	for _, rec := range e.order {
		if base, ok := nodeBase(rec.node); ok {
			base.stats.reset()
		}
	}
	return "stats cleared"
}

func (e *Engine) cmdRecompute(args []string) string {
	e.TriggerRecompute()
	return "recompute scheduled"
}
