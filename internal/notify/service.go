package notify

import (
	"context"
	"log/slog"

	"github.com/dmarchuk/rentroll/internal/billing"
)

// Service builds and saves one draft per priced charge. A draft failure
// (missing images, server trouble) never blocks the other houses.
type Service struct {
	store     Store
	imagesDir string
	from      string
	logger    *slog.Logger
}

func NewService(store Store, imagesDir, from string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, imagesDir: imagesDir, from: from, logger: logger}
}

// DraftCharges generates drafts for every priced charge and returns how many
// were saved.
func (s *Service) DraftCharges(ctx context.Context, priced []billing.ChargeResult, charges []*billing.AggregatedCharge) int {
	byKey := make(map[billing.PeriodKey]*billing.AggregatedCharge, len(charges))
	for _, c := range charges {
		byKey[billing.PeriodKey{House: c.House, PeriodEnd: c.PeriodEnd}] = c
	}

	saved := 0
	for _, res := range priced {
		charge := byKey[billing.PeriodKey{House: res.House, PeriodEnd: res.PeriodEnd}]
		if charge == nil {
			s.logger.Error("notify.draft.no_charge", "house", res.House)
			continue
		}
		draft, err := BuildDraft(res, charge, s.imagesDir, s.from)
		if err != nil {
			s.logger.Warn("notify.draft.build_failed", "house", res.House, "error", err)
			continue
		}
		if err := s.store.SaveDraft(ctx, draft); err != nil {
			s.logger.Error("notify.draft.save_failed", "house", res.House, "error", err)
			continue
		}
		saved++
	}
	return saved
}
