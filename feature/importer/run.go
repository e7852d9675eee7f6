package importer

import (
	"context"

	"bansync/core/models"
	"bansync/feature/sources"

	"go.uber.org/zap"
)

// Run pulls every list from its provider, one list at a time, and reconciles the
// lists that were read completely. A list whose fetch fails part-way, or that
// lost a batch, is left out of reconciliation so its bans are not deleted
// against a partial snapshot.
func (i *Importer) Run(ctx context.Context, lists []models.BanSourceList, providers sources.Registry) (*Report, error) {
	session := i.Begin()
	var failed []string

	for _, list := range lists {
		if ctx.Err() != nil {
			break
		}
		if !i.importList(ctx, session, list, providers) {
			failed = append(failed, list.ID)
			session.tracker.Forget(list.ID)
		}
	}

	report, err := session.Finish(ctx)
	if report != nil {
		report.Lists = len(lists)
		report.FailedLists = failed
	}
	return report, err
}

func (i *Importer) importList(ctx context.Context, session *Session, list models.BanSourceList, providers sources.Registry) bool {
	logger := i.logger.With(zap.String("list_id", list.ID), zap.String("provider", list.Provider))

	provider, err := providers.Get(list)
	if err != nil {
		logger.Error("Skipping list", zap.Error(err))
		return false
	}

	ok := true
	for batch, err := range provider.Fetch(ctx, list) {
		if err != nil {
			logger.Error("Failed to fetch list", zap.Error(err))
			return false
		}
		if err := session.QueueBatch(ctx, batch); err != nil {
			ok = false
		}
	}
	return ok
}
