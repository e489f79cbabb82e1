package util

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// PrintRowCounts renders row count of each table sorted by table name.
func PrintRowCounts(w io.Writer, counts map[string]int64) {
	var names []string
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Table", "Rows"})
	for _, name := range names {
		table.Append([]string{name, fmt.Sprintf("%d", counts[name])})
	}
	table.Render()
}
