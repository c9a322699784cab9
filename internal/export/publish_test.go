package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/verte-zerg/platemap/internal/artifact"
	"github.com/verte-zerg/platemap/internal/grid"
	"github.com/verte-zerg/platemap/internal/model"
	"github.com/verte-zerg/platemap/internal/plate"
)

type gridSource struct {
	pt     plate.Type
	grids  []*grid.Grid
	labels []string
}

func (s gridSource) Plate() plate.Type { return s.pt }

func (s gridSource) Merge() (Table, error) {
	rows, err := Merge(s.grids, s.labels)
	if err != nil {
		return Table{}, err
	}
	return NewTable(rows, s.labels), nil
}

type memoryHistory struct {
	records []model.ExportRecord
	err     error
}

func (h *memoryHistory) InsertExport(_ context.Context, rec model.ExportRecord) error {
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, rec)
	return nil
}

type failingSink struct{}

func (failingSink) Driver() artifact.Driver { return artifact.DriverMemory }

func (failingSink) Put(context.Context, string, string, []byte, string) (artifact.Artifact, error) {
	return artifact.Artifact{}, errors.New("disk full")
}

func sampleSource(t *testing.T) gridSource {
	t.Helper()
	src := gridSource{pt: plate.Wells96, grids: newGrids(plate.Wells96, 2), labels: []string{"Gene", "Sample"}}
	require.NoError(t, src.grids[0].Set(plate.Well{Row: 'B', Col: 3}, "X"))
	require.NoError(t, src.grids[1].Set(plate.Well{Row: 'A', Col: 1}, "s1"))
	return src
}

func newTestPublisher(sink artifact.Sink, history Recorder, logger *zap.Logger) *Publisher {
	p := NewPublisher(sink, history, logger)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	p.newID = func() string { return "export-1" }
	return p
}

func TestPublishWritesAndRecords(t *testing.T) {
	sink := artifact.NewMemory()
	history := &memoryHistory{}
	core, logs := observer.New(zapcore.InfoLevel)
	p := newTestPublisher(sink, history, zap.New(core))

	res, err := p.Publish(context.Background(), sampleSource(t), FormatText)
	require.NoError(t, err)
	require.Equal(t, 2, res.Rows)
	require.Equal(t, "labels.txt", res.Artifact.Name)
	require.Equal(t, "memory://export-1/labels.txt", res.Artifact.Location)

	payload, ok := sink.Get("export-1", "labels.txt")
	require.True(t, ok)
	require.Equal(t, "Cell Position\tGene\tSample\nA1\t\ts1\nB3\tX\t\n", string(payload))

	require.Len(t, history.records, 1)
	rec := history.records[0]
	require.Equal(t, "export-1", rec.ID)
	require.Equal(t, 96, rec.PlateType)
	require.Equal(t, "txt", rec.Format)
	require.Equal(t, []string{"Gene", "Sample"}, rec.Labels)
	require.Equal(t, 2, rec.RowCount)

	entries := logs.FilterMessage("export written").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "96", fields["plate"])
	require.Equal(t, int64(2), fields["rows"])
}

func TestPublishSpreadsheetWithoutHistory(t *testing.T) {
	sink := artifact.NewMemory()
	p := newTestPublisher(sink, nil, nil)

	res, err := p.Publish(context.Background(), sampleSource(t), FormatSpreadsheet)
	require.NoError(t, err)
	require.Equal(t, "labels.xlsx", res.Artifact.Name)
	require.Equal(t, FormatSpreadsheet.ContentType(), res.Artifact.ContentType)
	require.Len(t, sink.List(), 1)
}

func TestPublishHistoryFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	history := &memoryHistory{err: errors.New("database is locked")}
	p := newTestPublisher(artifact.NewMemory(), history, zap.New(core))

	_, err := p.Publish(context.Background(), sampleSource(t), FormatText)
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("failed to record export history").Len())
}

func TestPublishSinkFailure(t *testing.T) {
	history := &memoryHistory{}
	p := newTestPublisher(failingSink{}, history, nil)

	_, err := p.Publish(context.Background(), sampleSource(t), FormatText)
	require.ErrorContains(t, err, "disk full")
	require.Empty(t, history.records)
}

func TestPublishMergeFailure(t *testing.T) {
	src := gridSource{pt: plate.Wells96, grids: newGrids(plate.Wells96, 1), labels: []string{"Gene", "Sample"}}
	p := newTestPublisher(artifact.NewMemory(), nil, nil)

	_, err := p.Publish(context.Background(), src, FormatText)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestPublishEncodingFailure(t *testing.T) {
	src := sampleSource(t)
	require.NoError(t, src.grids[0].Set(plate.Well{Row: 'C', Col: 1}, "bad\xff"))
	sink := artifact.NewMemory()
	p := newTestPublisher(sink, nil, nil)

	_, err := p.Publish(context.Background(), src, FormatText)
	require.ErrorIs(t, err, ErrEncoding)
	require.Empty(t, sink.List())
}
