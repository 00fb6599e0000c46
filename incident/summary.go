package incident

import "sort"

// =============================================================================
// CONSOLIDATED SUMMARY
// =============================================================================

// SummaryRow counts incidents for one company, plant and type.
type SummaryRow struct {
	Company string
	Plant   string
	Type    string
	Count   int
}

// Summarize groups incidents by company, plant and type, sorted by those
// keys. Employees outside the catalog appear with an empty company.
func Summarize(incidents []Incident) []SummaryRow {
	type key struct{ company, plant, typ string }
	counts := make(map[key]int)
	for _, inc := range incidents {
		counts[key{inc.Company, inc.Plant, inc.Type}]++
	}

	rows := make([]SummaryRow, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, SummaryRow{Company: k.company, Plant: k.plant, Type: k.typ, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Company != b.Company {
			return a.Company < b.Company
		}
		if a.Plant != b.Plant {
			return a.Plant < b.Plant
		}
		return a.Type < b.Type
	})
	return rows
}

// =============================================================================
// TOP N
// =============================================================================

// EmployeeCount is one bar of a ranking chart.
type EmployeeCount struct {
	Employee string `json:"employee"`
	Count    int    `json:"count"`
}

// TopByType ranks employees by how many incidents of type t they have.
// Ties are broken by name. n <= 0 returns the full ranking.
func TopByType(incidents []Incident, t string, n int) []EmployeeCount {
	t = NormalizeCell(t)
	counts := make(map[string]int)
	for _, inc := range incidents {
		if NormalizeCell(inc.Type) == t {
			counts[inc.Employee]++
		}
	}

	out := make([]EmployeeCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, EmployeeCount{Employee: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Employee < out[j].Employee
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
