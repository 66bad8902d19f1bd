package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dvloznov/spendsense/internal/domain"
)

const maxExportLine = 1 << 20

// ExportMessage is one line of a captured-message export.
type ExportMessage struct {
	Source string `json:"source"` // "sms" or "notification"
	Sender string `json:"sender"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// IngestSummary counts the outcome of an export ingestion.
type IngestSummary struct {
	Lines    int `json:"lines"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Failed   int `json:"failed"`
}

// IngestExport downloads a JSON-Lines export from GCS and ingests every line.
func (s *Service) IngestExport(ctx context.Context, gcsURI string) (IngestSummary, error) {
	if s.storage == nil {
		return IngestSummary{}, fmt.Errorf("IngestExport: %w", ErrNoStorage)
	}

	data, err := s.storage.FetchFromGCS(ctx, gcsURI)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("IngestExport: fetch export: %w", err)
	}

	summary, err := s.IngestLines(ctx, bytes.NewReader(data))
	if err != nil {
		return summary, fmt.Errorf("IngestExport: %w", err)
	}

	s.log.Info().
		Str("gcs_uri", gcsURI).
		Int("lines", summary.Lines).
		Int("accepted", summary.Accepted).
		Int("rejected", summary.Rejected).
		Int("failed", summary.Failed).
		Msg("Export ingested")

	return summary, nil
}

// IngestLines ingests a JSON-Lines stream of ExportMessage. Blank lines are
// skipped. A malformed line or a store failure is counted and the stream
// continues; only a read error or a cancelled context stops it.
func (s *Service) IngestLines(ctx context.Context, r io.Reader) (IngestSummary, error) {
	var summary IngestSummary

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxExportLine)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		summary.Lines++

		accepted, err := s.ingestLine(ctx, line)
		switch {
		case err != nil:
			summary.Failed++
			s.log.Warn().Err(err).Int("line", summary.Lines).Msg("Export line failed")
		case accepted:
			summary.Accepted++
		default:
			summary.Rejected++
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("IngestLines: read: %w", err)
	}

	return summary, nil
}

func (s *Service) ingestLine(ctx context.Context, line []byte) (bool, error) {
	var msg ExportMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return false, fmt.Errorf("ingestLine: decode: %w", err)
	}

	var (
		rec *domain.TransactionRecord
		err error
	)
	switch strings.ToLower(strings.TrimSpace(msg.Source)) {
	case "sms":
		rec, err = s.IngestSMS(ctx, msg.Body)
	case "notification":
		rec, err = s.IngestNotification(ctx, msg.Sender, msg.Title, msg.Body)
	default:
		return false, fmt.Errorf("ingestLine: unknown source %q", msg.Source)
	}
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}
