package port

import (
	"context"

	"recommendation-service/internal/core/domain"

	"github.com/google/uuid"
)

// ScoreReporterPort публикует событие об обновлении оценок объявления.
// Публикация best-effort: ошибка логируется вызывающим, но не откатывает запись.
type ScoreReporterPort interface {
	ReportScoresUpdated(ctx context.Context, listingID uuid.UUID, scores domain.LocationScores) error
}
