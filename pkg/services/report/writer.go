package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const indent = "  "

// FormatFor returns the format implied by the destination extension.
func FormatFor(dest string) Format {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type WriterOptions struct {
	// Format forces the output format; when empty it follows the destination.
	Format Format
	// File handles local destinations; defaults to a FileSink.
	File Sink
	// S3 handles s3:// destinations; optional.
	S3 Sink
}

// Writer persists report values as an indented document.
type Writer struct {
	format Format
	file   Sink
	s3     Sink
}

func NewWriter(opts WriterOptions) *Writer {
	if opts.File == nil {
		opts.File = NewFileSink(0o644)
	}
	return &Writer{
		format: opts.Format,
		file:   opts.File,
		s3:     opts.S3,
	}
}

// Write encodes the report values fully in memory and only then hands them
// to the sink for dest, so an encoding failure never touches the destination.
// Failures are reported as *domain.WriteError.
func (w *Writer) Write(ctx context.Context, rep *domain.Report, dest string) error {
	if rep == nil || rep.Values == nil {
		return &domain.WriteError{Destination: dest, Err: fmt.Errorf("report has no values")}
	}

	format := w.format
	if format == "" {
		format = FormatFor(dest)
	}

	data, err := Encode(rep.Values, format)
	if err != nil {
		return &domain.WriteError{Destination: dest, Err: err}
	}

	sink, err := w.sinkFor(dest)
	if err != nil {
		return &domain.WriteError{Destination: dest, Err: err}
	}
	if err := sink.Write(ctx, dest, data); err != nil {
		return &domain.WriteError{Destination: dest, Err: err}
	}

	zerolog.Ctx(ctx).Info().
		Str("destination", dest).
		Str("format", string(format)).
		Int("bytes", len(data)).
		Msg("report written")
	return nil
}

func (w *Writer) sinkFor(dest string) (Sink, error) {
	if IsS3URI(dest) {
		if w.s3 == nil {
			return nil, fmt.Errorf("no S3 sink configured")
		}
		return w.s3, nil
	}
	return w.file, nil
}

// Encode renders values with two-space indentation.
func Encode(values *domain.MetricResult, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		raw, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", indent); err != nil {
			return nil, fmt.Errorf("indent json: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(len(indent))
		if err := enc.Encode(values); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Decode parses a document produced by Encode.
func Decode(data []byte, format Format) (*domain.MetricResult, error) {
	values := domain.NewMetricResult()
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, values)
	case FormatYAML:
		err = yaml.Unmarshal(data, values)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return values, nil
}

// ReadValues loads a local report document written by Writer.
func ReadValues(path string) (*domain.MetricResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return values, nil
}
