package app

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// RunSchema prints what the loaded artifacts expect: the trained feature
// order, the raw fields manual entry asks for and the encoded categories.
func (a *App) RunSchema() error {
	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "Model features (in order):")
	for i, name := range a.set.Schema() {
		fmt.Fprintf(w, "  %d\t%s\n", i+1, name)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Input fields:")
	for _, f := range a.set.RawFeatures() {
		kind := "numeric"
		if f.Categorical {
			kind = "categorical"
		}
		fmt.Fprintf(w, "  %s\t%s\n", f.Name, kind)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Encoded categories (drop first: %t):\n", a.set.Encoding.DropFirst)
	for _, c := range a.set.Encoding.Columns {
		fmt.Fprintf(w, "  %s\t%s\n", c.Name, strings.Join(c.Categories, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Standardized columns: %s\n", strings.Join(a.set.Scaler.Features(), ", "))
	fmt.Fprintf(w, "Imputer neighbors: %d\n", a.set.Imputer.Neighbors())
	return w.Flush()
}
