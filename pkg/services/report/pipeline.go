package report

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/vgsales-report/pkg/adapters"
	"github.com/de-tools/vgsales-report/pkg/models/domain"
	"github.com/de-tools/vgsales-report/pkg/services/dataset"
	"github.com/de-tools/vgsales-report/pkg/store/reports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Loader interface {
	Load(ctx context.Context, path string) (*domain.Table, error)
}

type ReportWriter interface {
	Write(ctx context.Context, rep *domain.Report, dest string) error
}

type Dependencies struct {
	Loader  Loader
	Builder *Builder
	Writer  ReportWriter
	// Archive is optional; when set every written report is also archived.
	Archive reports.Store
	Now     func() time.Time
	NewID   func() string
}

// Pipeline runs load, filter, build, write and archive strictly in sequence
// and stops at the first failure.
type Pipeline struct {
	loader  Loader
	builder *Builder
	writer  ReportWriter
	archive reports.Store
	now     func() time.Time
	newID   func() string
}

func NewPipeline(deps Dependencies) *Pipeline {
	if deps.Loader == nil {
		deps.Loader = dataset.NewLoader(dataset.DefaultOptions())
	}
	if deps.Builder == nil {
		deps.Builder = NewBuilder()
	}
	if deps.Writer == nil {
		deps.Writer = NewWriter(WriterOptions{})
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Pipeline{
		loader:  deps.Loader,
		builder: deps.Builder,
		writer:  deps.Writer,
		archive: deps.Archive,
		now:     deps.Now,
		newID:   deps.NewID,
	}
}

// Run generates the report described by cfg and writes it to output.
func (p *Pipeline) Run(ctx context.Context, cfg domain.ReportConfig, output string) (*domain.Report, error) {
	logger := zerolog.Ctx(ctx)

	table, err := p.loader.Load(ctx, cfg.InputFile)
	if err != nil {
		return nil, err
	}

	filtered, err := dataset.Filter{Period: cfg.Period, Genre: cfg.Genre}.Apply(table)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("period", cfg.Period.String()).
		Int("rows_loaded", table.Len()).
		Int("rows_selected", filtered.Len()).
		Msg("dataset filtered")

	rep, err := p.builder.Build(ctx, filtered, cfg)
	if err != nil {
		return nil, err
	}
	rep.ID = p.newID()
	rep.GeneratedAt = p.now().UTC()
	rep.RowsLoaded = table.Len()

	if err := p.writer.Write(ctx, rep, output); err != nil {
		return nil, err
	}

	if p.archive != nil {
		run, err := adapters.MapDomainReportToStoreRun(rep, cfg.MetricNames())
		if err != nil {
			return nil, fmt.Errorf("failed to map report for archive: %w", err)
		}
		if err := p.archive.Add(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to archive report: %w", err)
		}
		logger.Info().Str("id", rep.ID).Msg("report archived")
	}

	return rep, nil
}
