package ingest

import (
	"strings"

	"github.com/banshee-data/aismap/internal/ais"
	"github.com/banshee-data/aismap/internal/monitoring"
)

// PreviewRows is how many leading rows LogPreview prints.
const PreviewRows = 5

// LogPreview logs the header and the first rows of a decoded table so an
// operator can eyeball whether the chosen encoding produced sane text.
func LogPreview(t *ais.Table) {
	monitoring.Logf("[decode] columns: %s", strings.Join(t.Columns, ", "))
	n := t.Len()
	if n > PreviewRows {
		n = PreviewRows
	}
	for i := 0; i < n; i++ {
		cells := make([]string, len(t.Columns))
		for j, v := range t.Rows[i] {
			cells[j] = t.Columns[j] + "=" + v.String()
		}
		monitoring.Logf("[decode] row %d: %s", i, strings.Join(cells, " "))
	}
}
