package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/platemap/internal/artifact"
	"github.com/verte-zerg/platemap/internal/model"
	"github.com/verte-zerg/platemap/internal/plate"
)

// Source is anything that can produce the merged table for a plate.
type Source interface {
	Plate() plate.Type
	Merge() (Table, error)
}

// Recorder keeps export history.
type Recorder interface {
	InsertExport(ctx context.Context, rec model.ExportRecord) error
}

// Result is the outcome of one publish.
type Result struct {
	Artifact artifact.Artifact
	Format   Format
	Rows     int
}

// Publisher runs merge, encode and write for one export request.
type Publisher struct {
	sink    artifact.Sink
	history Recorder
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewPublisher wires a sink and an optional history recorder. A nil logger
// disables logging.
func NewPublisher(sink artifact.Sink, history Recorder, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		sink:    sink,
		history: history,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Publish merges src, encodes it as format and writes it through the sink.
// History failures are logged and do not fail the export.
func (p *Publisher) Publish(ctx context.Context, src Source, format Format) (Result, error) {
	pt := src.Plate()
	table, err := src.Merge()
	if err != nil {
		p.logger.Warn("merge failed", zap.Stringer("plate", pt), zap.Error(err))
		return Result{}, err
	}
	payload, err := format.Encode(table)
	if err != nil {
		p.logger.Warn("encode failed",
			zap.Stringer("plate", pt),
			zap.String("format", string(format)),
			zap.Error(err),
		)
		return Result{}, err
	}

	id := p.newID()
	art, err := p.sink.Put(ctx, id, format.Filename(), payload, format.ContentType())
	if err != nil {
		p.logger.Error("write failed",
			zap.String("export_id", id),
			zap.String("sink", string(p.sink.Driver())),
			zap.Error(err),
		)
		return Result{}, fmt.Errorf("failed to write %s: %w", format.Filename(), err)
	}

	labels := table.Header[1:]
	res := Result{Artifact: art, Format: format, Rows: len(table.Rows)}
	if p.history != nil {
		rec := model.ExportRecord{
			ID:         id,
			ExportedAt: p.now(),
			PlateType:  int(pt),
			Format:     string(format),
			Labels:     append([]string(nil), labels...),
			RowCount:   res.Rows,
			Location:   art.Location,
		}
		if herr := p.history.InsertExport(ctx, rec); herr != nil {
			p.logger.Warn("failed to record export history", zap.String("export_id", id), zap.Error(herr))
		}
	}

	p.logger.Info("export written",
		zap.String("export_id", id),
		zap.Stringer("plate", pt),
		zap.Int("labels", len(labels)),
		zap.Int("rows", res.Rows),
		zap.String("format", string(format)),
		zap.String("location", art.Location),
	)
	return res, nil
}
