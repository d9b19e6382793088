package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mbti-bot/internal/domain"
	"mbti-bot/internal/notify"
)

// ReportService renders the final report and attempts private delivery. The
// result is already committed by the time this runs, so a delivery failure
// only downgrades the acknowledgment, never the stored data.
type ReportService struct {
	catalog  *domain.Catalog
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewReportService(catalog *domain.Catalog, notifier notify.Notifier, logger *zap.Logger) *ReportService {
	return &ReportService{
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
	}
}

// BuildReport arma el reporte final a partir del resultado y su snapshot.
func (s *ReportService) BuildReport(result domain.Result, entry domain.HistoryEntry, previous *domain.Result) domain.Report {
	var subtypeTotal float64
	for _, v := range entry.SubtypeScores {
		subtypeTotal += v
	}
	var mainAverage, subtypeAverage float64
	if s.catalog.MainCount() > 0 {
		mainAverage = entry.TraitScores.Total() / float64(s.catalog.MainCount())
	}
	if s.catalog.SubtypeCount() > 0 {
		subtypeAverage = subtypeTotal / float64(s.catalog.SubtypeCount())
	}
	return domain.Report{
		Result:         result,
		Description:    domain.TypeDescription(result.TypeCode),
		TopMatches:     domain.TopCompatibility(result.TypeCode),
		Previous:       previous,
		MainAverage:    mainAverage,
		SubtypeAverage: subtypeAverage,
		SubtypeReason:  SubtypeReason(result.Subtype),
		GeneratedAt:    time.Now().UTC(),
	}
}

// Deliver intenta la entrega privada del reporte. Devuelve true si se envio;
// un fallo se loguea y el caller responde con el acuse generico.
func (s *ReportService) Deliver(ctx context.Context, contact string, report domain.Report) bool {
	if s.notifier == nil || contact == "" {
		return false
	}
	if err := s.notifier.SendReport(ctx, contact, report); err != nil {
		if s.logger != nil {
			s.logger.Warn("report delivery failed",
				zap.Error(err),
				zap.String("user_id", report.Result.UserID),
			)
		}
		return false
	}
	return true
}
