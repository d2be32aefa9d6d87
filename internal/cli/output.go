package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/utafrali/ScentGo/internal/domain"
)

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writePerfumes prints perfumes as JSON or as an aligned table.
func writePerfumes(w io.Writer, format string, perfumes []domain.Perfume) error {
	if format == "json" {
		return writeJSON(w, perfumes)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tRATING\tREVIEWS\tNOTES")
	for _, p := range perfumes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%d\t%s\n",
			p.ID, p.Name, p.Brand, p.AverageRating, p.ReviewCount, strings.Join(p.Notes, ", "))
	}
	return tw.Flush()
}
