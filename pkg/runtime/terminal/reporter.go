package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/runtime/terminal/export"
)

// Reporter outputs reports to the console in a plain list form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(report *domain.Report) error {
	tmpl := `
{{.Title}}{{if .Horizon}} ({{.Horizon}} days){{end}}
Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}
{{range .Sections}}
=== {{.Title}} ===
{{range $key, $value := .Summary}}{{$key}}: {{$value}}
{{end}}{{range .Details}}- {{.Name}}: {{.Value}}{{if .Unit}} {{.Unit}}{{end}}
{{end}}{{end}}`
	t, err := template.New("report").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

// formatReporter picks the reporter from the --format flag at print time.
type formatReporter struct {
	cli *CLI
}

func (f *formatReporter) Handle(report *domain.Report) error {
	switch f.cli.format {
	case "table", "":
		return export.NewReporter(f.cli.output).Handle(report)
	case "plain":
		return NewReporter(f.cli.output).Handle(report)
	default:
		return fmt.Errorf("unknown report format %q", f.cli.format)
	}
}
