package services

import (
	"cmp"
	"context"
	"slices"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/domain/models"
	"wildcats-food-express/internal/xpkg/logger"
)

type HistoryService struct {
	store core.IStore
	mylog logger.Logger
}

func NewHistoryService(store core.IStore, mylogger logger.Logger) *HistoryService {
	return &HistoryService{store: store, mylog: mylogger}
}

// QueryByUser returns archived orders ordered by archival time then id.
// Admins see every entry.
func (hs *HistoryService) QueryByUser(ctx context.Context) ([]models.HistoryOrder, error) {
	sess, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}

	var history []models.HistoryOrder
	err = hs.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		var err error
		if sess.IsAdmin() {
			history, err = repos.History().ListAll(ctx)
		} else {
			history, err = repos.History().List(ctx, sess.UserID)
		}
		return err
	})
	if err != nil {
		hs.mylog.Action("query_history").Error("Failed to read order history", err, "user_id", sess.UserID)
		return nil, storageErr(err)
	}

	slices.SortStableFunc(history, func(a, b models.HistoryOrder) int {
		if c := a.ArchivedAt.Compare(b.ArchivedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return history, nil
}
