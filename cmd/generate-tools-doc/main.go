package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rhobs/mcp-exec/pkg/command"
	"github.com/rhobs/mcp-exec/pkg/spec"
	"github.com/rhobs/mcp-exec/pkg/tooldef"
)

func main() {
	output := flag.String("o", "TOOLS.md", "Output file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: generate-tools-doc [-o FILE] <command> <tool declarations>...\n\n")
		fmt.Fprintf(os.Stderr, "Documents the tools mcp-exec would serve for the same arguments.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	program, err := spec.Compile(args[0], args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, []byte(renderMarkdown(program)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("✓ %s generated successfully\n", *output)
	fmt.Printf("  Documented %d tools:\n", len(program.Tools))
	for i := range program.Tools {
		fmt.Printf("    - %s\n", program.Tools[i].Name)
	}
}

// formatTable generates a formatted markdown table with aligned columns
func formatTable(headers, alignments []string, rows [][]string) string {
	if len(headers) == 0 || len(rows) == 0 {
		return ""
	}

	// Calculate max width for each column
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder

	// Header row
	sb.WriteString("|")
	for i, h := range headers {
		sb.WriteString(fmt.Sprintf(" %-*s |", widths[i], h))
	}
	sb.WriteString("\n")

	// Separator row with alignment
	sb.WriteString("|")
	for i, w := range widths {
		w = max(w, 3)
		align := "l" // default left
		if i < len(alignments) {
			align = alignments[i]
		}
		switch align {
		case "c": // center
			sb.WriteString(fmt.Sprintf(" :%s: |", strings.Repeat("-", w-2)))
		case "r": // right
			sb.WriteString(fmt.Sprintf(" %s: |", strings.Repeat("-", w-1)))
		default: // left
			sb.WriteString(fmt.Sprintf(" :%s |", strings.Repeat("-", w-1)))
		}
	}
	sb.WriteString("\n")

	// Data rows
	for _, row := range rows {
		sb.WriteString("|")
		for i, cell := range row {
			if i < len(widths) {
				sb.WriteString(fmt.Sprintf(" %-*s |", widths[i], cell))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func renderMarkdown(program *spec.Program) string {
	var sb strings.Builder

	sb.WriteString("<!-- This file is auto-generated. Do not edit manually. -->\n")
	sb.WriteString("<!-- Run 'generate-tools-doc' with the server arguments to regenerate. -->\n\n")

	sb.WriteString("# Available Tools\n\n")
	sb.WriteString(fmt.Sprintf("This MCP server exposes the following tools for running `%s`:\n\n", program.BaseCommand))

	defs := tooldef.FromProgram(program)
	for i, def := range defs {
		sb.WriteString(fmt.Sprintf("## `%s`\n\n", def.Name))
		sb.WriteString(fmt.Sprintf("> %s\n\n", strings.TrimSpace(def.Description)))

		sb.WriteString("**Command:**\n\n")
		sb.WriteString(fmt.Sprintf("```\n%s\n```\n\n", strings.Join(command.Template(program, &program.Tools[i]), " ")))

		if len(def.Params) == 0 {
			sb.WriteString(formatTable(
				[]string{"", ""},
				[]string{"l", "l"},
				[][]string{{"**Parameters**", "None"}},
			))
			sb.WriteString("\n")
		} else {
			sb.WriteString("**Parameters:**\n\n")
			var rows [][]string
			for _, p := range def.Params {
				req := ""
				if p.Required {
					req = "✅"
				}
				rows = append(rows, []string{
					fmt.Sprintf("`%s`", p.Name),
					fmt.Sprintf("`%s`", p.Type),
					req,
					p.Description,
				})
			}
			sb.WriteString(formatTable(
				[]string{"Parameter", "Type", "Required", "Description"},
				[]string{"l", "l", "c", "l"},
				rows,
			))
			sb.WriteString("\n")
		}

		if i < len(defs)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return sb.String()
}
