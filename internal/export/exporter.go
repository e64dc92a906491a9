package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/kapu/youtube-data-go/internal/domain"
	"github.com/kapu/youtube-data-go/pkg/errors"
	"go.uber.org/zap"
)

// File names inside one export run.
const (
	VideoFile          = "video.csv"
	PlaylistFile       = "playlist.csv"
	ChannelSummaryFile = "canal_info.csv"
	ChannelVideosFile  = "videos_info.csv"
	ReportFile         = "report.json"
)

// Exporter renders reports as CSV and JSON and hands them to a Sink.
type Exporter struct {
	sink   Sink
	logger *zap.Logger
}

func NewExporter(sink Sink, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{sink: sink, logger: logger}
}

// ObjectName returns <kind>/<id>/<runID>/<file>.
func ObjectName(kind, id string, runID uuid.UUID, file string) string {
	return path.Join(kind, id, runID.String(), file)
}

// validID accepts YouTube video, playlist and channel ids, which only use
// the URL-safe base64 alphabet. Anything else could escape the export root.
func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

type file struct {
	name   string
	encode func(io.Writer) error
}

func (e *Exporter) ExportVideo(ctx context.Context, runID uuid.UUID, record *domain.VideoRecord) ([]string, error) {
	return e.put(ctx, "video", record.ID, runID, []file{
		{VideoFile, func(w io.Writer) error { return WriteVideoCSV(w, record) }},
		{ReportFile, func(w io.Writer) error { return WriteJSON(w, record) }},
	})
}

func (e *Exporter) ExportPlaylist(ctx context.Context, runID uuid.UUID, report *domain.PlaylistReport) ([]string, error) {
	return e.put(ctx, "playlist", report.PlaylistID, runID, []file{
		{PlaylistFile, func(w io.Writer) error { return WritePlaylistCSV(w, report.Rows) }},
		{ReportFile, func(w io.Writer) error { return WriteJSON(w, report) }},
	})
}

func (e *Exporter) ExportChannel(ctx context.Context, runID uuid.UUID, report *domain.ChannelReport) ([]string, error) {
	return e.put(ctx, "channel", report.Summary.ChannelID, runID, []file{
		{ChannelSummaryFile, func(w io.Writer) error { return WriteChannelSummaryCSV(w, &report.Summary) }},
		{ChannelVideosFile, func(w io.Writer) error { return WriteChannelVideosCSV(w, report.Videos) }},
		{ReportFile, func(w io.Writer) error { return WriteJSON(w, report) }},
	})
}

func (e *Exporter) put(ctx context.Context, kind, id string, runID uuid.UUID, files []file) ([]string, error) {
	if !validID(id) {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("%s id %q cannot be used as an export path", kind, id), "id", id)
	}

	locations := make([]string, 0, len(files))
	for _, f := range files {
		var buf bytes.Buffer
		if err := f.encode(&buf); err != nil {
			return locations, fmt.Errorf("failed to encode %s: %w", f.name, err)
		}

		name := ObjectName(kind, id, runID, f.name)
		if err := e.sink.Put(ctx, name, buf.Bytes()); err != nil {
			e.logger.Error("Export failed",
				zap.String("object", name),
				zap.Error(err))
			return locations, err
		}
		locations = append(locations, e.sink.Location(name))
	}

	e.logger.Info("Report exported",
		zap.String("kind", kind),
		zap.String("id", id),
		zap.String("run_id", runID.String()),
		zap.Int("files", len(locations)))
	return locations, nil
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
