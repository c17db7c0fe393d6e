package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
	// alignPath is left aligned and soft-wrapped at pathColumnWidth.
	alignPath
)

const pathColumnWidth = 60

// writeTable renders rows under headers to w. Short rows are padded.
func writeTable(w io.Writer, headers []string, rows [][]string, aligns []columnAlignment) {
	columns := len(headers)
	if columns == 0 {
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		cc := table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if i < len(aligns) {
			switch aligns[i] {
			case alignRight:
				cc.Align = text.AlignRight
			case alignPath:
				cc.WidthMax = pathColumnWidth
				cc.WidthMaxEnforcer = text.WrapSoft
			}
		}
		configs = append(configs, cc)
	}
	tw.SetColumnConfigs(configs)
	tw.Render()
}
