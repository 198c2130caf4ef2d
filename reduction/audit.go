package reduction

import (
	"fmt"
	"sort"
	"strings"
)

// PotatoAudit is one row of per-potato reduction metadata (entrance count,
// dwell-time range, mean-reward range) kept around for auditability.
type PotatoAudit struct {
	EventID       string
	NumEntrances  int
	ThetaMin      float64
	ThetaMax      float64
	MeanRewardMin float64
	MeanRewardMax float64
}

// Audit computes one PotatoAudit row per alarm-capable event, requiring
// GetDTMC to have already been called (entrance results are read from the
// per-potato cache, not recomputed).
func (r *ACTMCReduction) Audit() ([]PotatoAudit, error) {
	var rows []PotatoAudit
	for _, e := range r.model.Events() {
		p := r.potatoes[e.ID]
		if p == nil {
			continue
		}
		row := PotatoAudit{
			EventID:      e.ID,
			NumEntrances: p.Entrances.Cardinality(),
		}
		first := true
		for s := p.Entrances.NextSetBit(0); s >= 0; s = p.Entrances.NextSetBit(s + 1) {
			res, err := p.CachedResult(s)
			if err != nil {
				return nil, err
			}
			theta := res.Theta()
			if first || theta < row.ThetaMin {
				row.ThetaMin = theta
			}
			if first || theta > row.ThetaMax {
				row.ThetaMax = theta
			}
			if first || res.MeanReward < row.MeanRewardMin {
				row.MeanRewardMin = res.MeanReward
			}
			if first || res.MeanReward > row.MeanRewardMax {
				row.MeanRewardMax = res.MeanReward
			}
			first = false
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].EventID < rows[j].EventID })
	return rows, nil
}

// GenerateAuditTable renders rows as a markdown table for human inspection.
func GenerateAuditTable(rows []PotatoAudit) string {
	var sb strings.Builder
	sb.WriteString("| Event | Entrances | theta min | theta max | reward min | reward max |\n")
	sb.WriteString("|-------|-----------|-----------|-----------|------------|------------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.6g | %.6g | %.6g | %.6g |\n",
			row.EventID, row.NumEntrances, row.ThetaMin, row.ThetaMax, row.MeanRewardMin, row.MeanRewardMax))
	}
	return sb.String()
}
