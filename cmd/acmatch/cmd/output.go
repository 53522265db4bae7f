package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/corey/acmatch/internal/app"
	"github.com/corey/acmatch/internal/domain/status"
	"github.com/corey/acmatch/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// painter wraps text in ANSI codes when color is on.
type painter bool

func (p painter) paint(color, s string) string {
	if !p {
		return s
	}
	return color + s + colorReset
}

// formatMatch renders one match grep-style. label is the file name, or
// empty for --text and stdin input.
//
//	file:12-17: value
func formatMatch(p painter, label string, m app.Match) string {
	var sb strings.Builder
	if label != "" {
		sb.WriteString(p.paint(colorCyan, label))
		sb.WriteString(":")
	}
	sb.WriteString(fmt.Sprintf("%d-%d: ", m.Start, m.End))
	sb.WriteString(p.paint(colorGreen, m.Value))
	sb.WriteString("\n")
	return sb.String()
}

// matchJSON is the --json line format.
type matchJSON struct {
	File   string `json:"file,omitempty"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Length int    `json:"length"`
	Value  string `json:"value"`
}

func formatMatchJSON(label string, m app.Match) (string, error) {
	b, err := json.Marshal(matchJSON{File: label, Start: m.Start, End: m.End, Length: m.Length, Value: m.Value})
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

// formatCompile renders a compile or import result.
//
//	⚡ english │ 4 patterns │ 10 nodes │ 10 units in 1 slice │ 212µs
func formatCompile(p painter, res *app.CompileResult) string {
	line := fmt.Sprintf("%s │ %d patterns │ %d nodes", p.paint(colorBold, "⚡ "+res.Name), res.Patterns, res.Nodes)
	if res.Build.Units > 0 {
		slices := "slices"
		if res.Build.Slices == 1 {
			slices = "slice"
		}
		line += fmt.Sprintf(" │ %d units in %d %s", res.Build.Units, res.Build.Slices, slices)
	}
	return line + fmt.Sprintf(" │ %s\n", res.Elapsed.Round(time.Microsecond))
}

// formatList renders stored sets as a fixed-width table.
func formatList(p painter, infos []ports.SnapshotInfo) string {
	if len(infos) == 0 {
		return "no pattern sets stored\n"
	}
	width := len("NAME")
	for _, info := range infos {
		width = max(width, len(info.Name))
	}

	var sb strings.Builder
	sb.WriteString(p.paint(colorBold, fmt.Sprintf("%-*s  %8s  %8s  %-20s  %s", width, "NAME", "PATTERNS", "NODES", "COMPILED", "SOURCE")))
	sb.WriteString("\n")
	for _, info := range infos {
		sb.WriteString(fmt.Sprintf("%s  %8d  %8d  %-20s  %s\n",
			p.paint(colorCyan, fmt.Sprintf("%-*s", width, info.Name)),
			info.Patterns, info.Nodes,
			info.CompiledAt.UTC().Format("2006-01-02 15:04:05"),
			p.paint(colorGray, info.Source)))
	}
	return sb.String()
}

// formatStatus renders status data.
func formatStatus(p painter, d *status.Data) string {
	built := p.paint(colorGreen, "✓ built")
	if !d.UpToDate {
		built = p.paint(colorYellow, "✗ not built")
	}
	var sb strings.Builder
	sb.WriteString(p.paint(colorBold, "⚡ "+d.Name) + "\n")
	sb.WriteString(fmt.Sprintf("  Patterns:   %d\n", d.Patterns))
	sb.WriteString(fmt.Sprintf("  Nodes:      %d\n", d.Nodes))
	sb.WriteString(fmt.Sprintf("  Max depth:  %d\n", d.MaxDepth))
	sb.WriteString(fmt.Sprintf("  State:      %s\n", built))
	if d.Source != "" {
		sb.WriteString(fmt.Sprintf("  Source:     %s\n", d.Source))
	}
	if len(d.TopValues) > 0 {
		sb.WriteString(fmt.Sprintf("  Top values: %s\n", strings.Join(d.TopValues, ", ")))
	}
	sb.WriteString(fmt.Sprintf("  Compiled:   %s\n", d.CompiledAt.UTC().Format(time.RFC3339)))
	return sb.String()
}

// formatVerify renders verify reports; mismatches list every differing
// occurrence.
func formatVerify(p painter, reports []app.VerifyReport) string {
	var sb strings.Builder
	for _, r := range reports {
		if r.OK() {
			sb.WriteString(fmt.Sprintf("%s %s (%s): %d matches agree\n", p.paint(colorGreen, "✓"), r.Engine, r.Mode, r.Matches))
			continue
		}
		sb.WriteString(fmt.Sprintf("%s %s (%s): %d missing, %d extra\n", p.paint(colorRed, "✗"), r.Engine, r.Mode, len(r.Missing), len(r.Extra)))
		for _, o := range r.Missing {
			sb.WriteString(fmt.Sprintf("    - %d-%d %q\n", o.Start, o.End, o.Pattern))
		}
		for _, o := range r.Extra {
			sb.WriteString(fmt.Sprintf("    + %d-%d %q\n", o.Start, o.End, o.Pattern))
		}
	}
	return sb.String()
}
