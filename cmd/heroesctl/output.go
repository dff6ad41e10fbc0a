package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"heroes/internal/catalog"
	"heroes/internal/models"
	"heroes/internal/validation"
)

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printKV(w io.Writer, rows [][2]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	_ = tw.Flush()
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "no results")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func printCharacters(w io.Writer, items []models.Character) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			item.Name,
			orDash(item.RealName),
			item.Status.Label(),
			orDash(item.Alignment.Label()),
			orDash(item.Affiliation),
		})
	}
	printTable(w, []string{"ID", "NAME", "REAL_NAME", "STATUS", "ALIGNMENT", "AFFILIATION"}, rows)
}

func printCharacter(w io.Writer, item models.Character) {
	printKV(w, [][2]string{
		{"id", item.ID},
		{"name", item.Name},
		{"real_name", orDash(item.RealName)},
		{"origin", orDash(item.Origin)},
		{"universe", orDash(item.Universe)},
		{"powers", orDash(item.Powers)},
		{"affiliation", orDash(item.Affiliation)},
		{"first_appearance", orDash(item.FirstAppearance)},
		{"status", item.Status.Label()},
		{"alignment", orDash(item.Alignment.Label())},
		{"description", orDash(item.Description)},
		{"image_url", orDash(item.ImageURL)},
		{"updated_at", formatTime(item.UpdatedAt)},
	})
}

func printStats(w io.Writer, stats catalog.Stats) {
	printKV(w, [][2]string{
		{"total", strconv.Itoa(stats.Total)},
		{"active", strconv.Itoa(stats.Active)},
		{"inactive", strconv.Itoa(stats.Inactive)},
		{"dead", strconv.Itoa(stats.Dead)},
	})
	printTally(w, "AFFILIATION", stats.Affiliations)
	printTally(w, "UNIVERSE", stats.Universes)
}

func printTally(w io.Writer, header string, tally map[string]int) {
	keys := make([]string, 0, len(tally))
	for k := range tally {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, strconv.Itoa(tally[k])})
	}
	_, _ = fmt.Fprintln(w)
	printTable(w, []string{header, "COUNT"}, rows)
}

func printValidation(w io.Writer, verr *validation.Error) {
	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][2]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, [2]string{k, verr.Fields[k]})
	}
	printKV(w, rows)
}
