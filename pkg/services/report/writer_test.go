package report

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/vgsales-report/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func sampleReport() *domain.Report {
	return &domain.Report{
		Values: domain.NewMetricResult(
			domain.ResultEntry{Key: "Number of games", Value: 2},
			domain.ResultEntry{Key: "Total Sales", Value: 15.0},
			domain.ResultEntry{Key: "Average sales value of games", Value: 7.5},
			domain.ResultEntry{Key: "pct_per_genre", Value: domain.Breakdown{"Shooter": 50.0, "RPG": 50.0}},
			domain.ResultEntry{Key: domain.KeyReportStartYear, Value: 2012},
			domain.ResultEntry{Key: domain.KeyReportEndYear, Value: domain.NotAvailable},
		),
	}
}

func TestWriter_Write_JSON(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "report.json")

	err := NewWriter(WriterOptions{}).Write(context.Background(), sampleReport(), dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	expected := `{
  "Number of games": 2,
  "Total Sales": 15.0,
  "Average sales value of games": 7.5,
  "pct_per_genre": {
    "RPG": 50.0,
    "Shooter": 50.0
  },
  "report_start_year": 2012,
  "report_end_year": "N/A"
}
`
	assert.Equal(t, expected, string(data))
}

func TestWriter_Write_RoundTrip(t *testing.T) {
	for _, name := range []string{"report.json", "report.yaml", "report.yml"} {
		t.Run(name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), name)
			rep := sampleReport()

			require.NoError(t, NewWriter(WriterOptions{}).Write(context.Background(), rep, dest))

			values, err := ReadValues(dest)
			require.NoError(t, err)
			assert.Equal(t, rep.Values.Entries(), values.Entries())
		})
	}
}

func TestWriter_Write_YAMLIndent(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "report.yaml")

	require.NoError(t, NewWriter(WriterOptions{}).Write(context.Background(), sampleReport(), dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pct_per_genre:\n  RPG: 50.0\n  Shooter: 50.0\n")
	assert.Contains(t, string(data), "report_end_year: N/A\n")
}

func TestWriter_Write_EncodingFailureLeavesDestinationUntouched(t *testing.T) {
	// Given
	dir := t.TempDir()
	dest := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(dest, []byte("previous"), 0o644))

	rep := &domain.Report{Values: domain.NewMetricResult(
		domain.ResultEntry{Key: "ok", Value: 1},
		domain.ResultEntry{Key: "bad", Value: []int{1}},
	)}

	// When
	err := NewWriter(WriterOptions{}).Write(context.Background(), rep, dest)

	// Then
	var writeErr *domain.WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, dest, writeErr.Destination)

	data, readErr := os.ReadFile(dest)
	require.NoError(t, readErr)
	assert.Equal(t, "previous", string(data))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Len(t, entries, 1)
}

func TestWriter_Write_MissingDirectory(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "report.json")

	err := NewWriter(WriterOptions{}).Write(context.Background(), sampleReport(), dest)

	var writeErr *domain.WriteError
	require.True(t, errors.As(err, &writeErr))
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriter_Write_ForcedFormat(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "report.out")

	require.NoError(t, NewWriter(WriterOptions{Format: FormatYAML}).Write(context.Background(), sampleReport(), dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	values, err := Decode(data, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 6, values.Len())
}

func TestWriter_Write_S3(t *testing.T) {
	// Given
	client := &mockS3{}
	var body []byte
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "reports" && *in.Key == "2012/report.json" && *in.ContentType == "application/json"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		body, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil)

	w := NewWriter(WriterOptions{S3: NewS3Sink(client)})

	// When
	err := w.Write(context.Background(), sampleReport(), "s3://reports/2012/report.json")

	// Then
	require.NoError(t, err)
	client.AssertExpectations(t)
	values, err := Decode(body, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, sampleReport().Values.Entries(), values.Entries())
}

func TestWriter_Write_S3Failure(t *testing.T) {
	client := &mockS3{}
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	err := NewWriter(WriterOptions{S3: NewS3Sink(client)}).
		Write(context.Background(), sampleReport(), "s3://reports/report.json")

	var writeErr *domain.WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Contains(t, err.Error(), "access denied")
}

func TestWriter_Write_S3WithoutSink(t *testing.T) {
	err := NewWriter(WriterOptions{}).Write(context.Background(), sampleReport(), "s3://reports/report.json")

	var writeErr *domain.WriteError
	assert.True(t, errors.As(err, &writeErr))
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		key     string
		wantErr bool
	}{
		{uri: "s3://bucket/report.json", bucket: "bucket", key: "report.json"},
		{uri: "s3://bucket/a/b/report.yaml", bucket: "bucket", key: "a/b/report.yaml"},
		{uri: "s3://bucket/", wantErr: true},
		{uri: "s3:///report.json", wantErr: true},
		{uri: "https://bucket/report.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, key, err := ParseS3URI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}
