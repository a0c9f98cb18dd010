package main

import (
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

func formatSize(file os.FileInfo) string {
	if file.IsDir() {
		return "-"
	}
	return humanize.Bytes(uint64(file.Size()))
}

func summaryRows(res *Result) [][]string {
	rows := [][]string{
		{"entries", strconv.Itoa(res.Entries)},
		{"extracted", strconv.Itoa(res.Extracted)},
		{"skipped", strconv.Itoa(len(res.Skipped))},
		{"layouts", strconv.Itoa(len(res.Report.Resources.Layouts))},
		{"images", strconv.Itoa(len(res.Report.Resources.Images))},
		{"assets", strconv.Itoa(len(res.Report.Assets))},
	}
	for _, m := range res.Common {
		rows = append(rows, []string{m.Name, strconv.Itoa(len(m.Files))})
	}
	return rows
}

func printSummary(w io.Writer, res *Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Count"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetAutoFormatHeaders(true)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(summaryRows(res))
	table.Render()
}
