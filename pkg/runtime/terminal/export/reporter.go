package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
)

type TableConfig struct {
	NameWidth  int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  40,
		ValueWidth: 24,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type row struct {
	Name  string
	Value string
}

type reportView struct {
	*domain.Report
	Rows []row
}

const reportTemplate = `
{{.Title}}

Source: {{.Source}}{{if .Genre}}
Genre: {{.Genre}}{{end}}
Rows: {{.RowsSelected}} of {{.RowsLoaded}}

{{separator}}
{{formatRow "Metric" "Value"}}
{{separator}}
{{range .Rows}}{{formatRow .Name .Value}}
{{end}}{{separator}}
`

const historyTemplate = `{{separator}}
{{formatRow "Report" "Generated"}}
{{separator}}
{{range .}}{{formatRow .ID (.GeneratedAt.Format "2006-01-02 15:04:05")}}
{{formatRow (printf "  %s" .Title) (printf "%d rows" .RowsSelected)}}
{{end}}{{separator}}
`

// Handle prints the report values as a two-column table. Breakdown values
// are expanded to one row per label.
func (c *Reporter) Handle(report *domain.Report) error {
	rows, err := flatten(report.Values)
	if err != nil {
		return err
	}
	return c.execute("report", reportTemplate, reportView{Report: report, Rows: rows})
}

// HandleHistory prints one entry per archived report.
func (c *Reporter) HandleHistory(reports []*domain.Report) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(c.writer, "No archived reports found")
		return err
	}
	return c.execute("history", historyTemplate, reports)
}

func (c *Reporter) execute(name, text string, data any) error {
	funcMap := template.FuncMap{
		"formatRow": func(name, value string) string {
			return fmt.Sprintf("| %-*s | %-*s |",
				c.config.NameWidth, name,
				c.config.ValueWidth, value)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2))
		},
	}

	t, err := template.New(name).Funcs(funcMap).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, data)
}

func flatten(values *domain.MetricResult) ([]row, error) {
	var rows []row
	for _, e := range values.Entries() {
		if b, ok := e.Value.(domain.Breakdown); ok {
			for _, label := range b.Labels() {
				pct, err := domain.MarshalValue(b[label])
				if err != nil {
					return nil, err
				}
				rows = append(rows, row{Name: fmt.Sprintf("%s[%s]", e.Key, label), Value: string(pct) + "%"})
			}
			continue
		}

		if s, ok := e.Value.(string); ok {
			rows = append(rows, row{Name: e.Key, Value: s})
			continue
		}
		v, err := domain.MarshalValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("format %q: %w", e.Key, err)
		}
		rows = append(rows, row{Name: e.Key, Value: string(v)})
	}
	return rows, nil
}
