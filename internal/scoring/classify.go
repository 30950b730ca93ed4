package scoring

// Cutoff separates a normal result from one suggesting impairment.
const Cutoff = 24

// Interpret maps a total onto the locale's label. Totals at or above the
// cutoff are normal.
func (t *LocaleTable) Interpret(total int) string {
	if total >= Cutoff {
		return t.Labels.Normal
	}
	return t.Labels.Impaired
}
