package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type alignment int

const (
	alignLeft alignment = iota
	alignRight
)

// tableData describes one rendered table. Short rows are padded with blanks.
type tableData struct {
	headers []string
	rows    [][]string
	aligns  []alignment
	footer  []string
}

func renderTable(tbl tableData) string {
	columns := len(tbl.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(tbl.headers, columns))
	for _, row := range tbl.rows {
		tw.AppendRow(toRow(row, columns))
	}
	if len(tbl.footer) > 0 {
		tw.AppendFooter(toRow(tbl.footer, columns))
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(tbl.aligns) && tbl.aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func toRow(cells []string, columns int) table.Row {
	r := make(table.Row, columns)
	for i := range columns {
		if i < len(cells) {
			r[i] = cells[i]
		} else {
			r[i] = ""
		}
	}
	return r
}
