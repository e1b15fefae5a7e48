package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"

	"github.com/Sternrassler/artic-table/pkg/artwork"
)

const maxCellWidth = 40

func writeRecordsTable(w io.Writer, records []artwork.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tPLACE OF ORIGIN\tARTIST\tINSCRIPTIONS\tSTART\tEND")
	fmt.Fprintln(tw, "─\t─────\t───────────────\t──────\t────────────\t─────\t───")

	for i, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			cell(r.Title),
			cell(r.PlaceOfOrigin),
			cell(r.ArtistDisplay),
			cell(r.Inscriptions),
			artwork.FormatYear(r.DateStart),
			artwork.FormatYear(r.DateEnd),
		)
	}
	return tw.Flush()
}

func writeRecordsJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// cell flattens s to one line and truncates it for tabular output.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "-"
	}
	return runewidth.Truncate(s, maxCellWidth, "...")
}

