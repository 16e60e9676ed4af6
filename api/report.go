package api

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gorqa/app"
	"gorqa/domain/rqa"
)

// RenderMarkdownReport builds a markdown comparison report for one run:
// a per-year metric table per group, the group means, and any recorded
// failures.
func RenderMarkdownReport(batch *app.BatchResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Seasonal RQA Report\n\n")
	fmt.Fprintf(&b, "Run `%s`, computed %s.\n\n", batch.RunID, batch.CreatedAt.Time().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "Parameters: m=%d, tau=%d, threshold quantile %.2f, season %s-%s.\n\n",
		batch.Params.EmbeddingDim, batch.Params.Delay, batch.Params.ThresholdQuantile,
		batch.Params.StartMonth, batch.Params.EndMonth)

	for _, group := range []app.GroupSummary{batch.Treatment, batch.Control} {
		fmt.Fprintf(&b, "## %s years\n\n", titleCase(group.Name))
		if len(group.Years) == 0 {
			b.WriteString("No analyzable years in this group.\n\n")
			continue
		}
		b.WriteString("| Year | RR | DET | LAM | L | L_max | ENTR | TT | V_max | V_ENTR |\n")
		b.WriteString("|------|----|-----|-----|---|-------|------|----|-------|--------|\n")
		for _, year := range group.Years {
			writeMetricRow(&b, fmt.Sprintf("%d", year), batch.Years[year].Result)
		}
		writeMetricRow(&b, "**mean**", group.Means)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Group comparison\n\n")
	fmt.Fprintf(&b, "Treatment mean DET %.4f vs control %.4f; treatment mean LAM %.4f vs control %.4f.\n\n",
		batch.Treatment.Means.DET, batch.Control.Means.DET,
		batch.Treatment.Means.LAM, batch.Control.Means.LAM)

	if len(batch.Failures) > 0 {
		b.WriteString("## Failures\n\n")
		for _, failure := range batch.Failures {
			fmt.Fprintf(&b, "- %d: %s (%s)\n", failure.Year, failure.Message, failure.Kind)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderHTMLReport renders the markdown report to standalone HTML.
func RenderHTMLReport(batch *app.BatchResult) []byte {
	md := []byte(RenderMarkdownReport(batch))
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	return markdown.ToHTML(md, p, renderer)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func writeMetricRow(b *strings.Builder, label string, r rqa.Result) {
	fmt.Fprintf(b, "| %s | %.4f | %.4f | %.4f | %.2f | %.0f | %.4f | %.2f | %.0f | %.4f |\n",
		label, r.RR, r.DET, r.LAM, r.L, r.LMax, r.ENTR, r.TT, r.VMax, r.VEntr)
}
