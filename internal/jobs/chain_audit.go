package jobs

import (
	"context"
	"errors"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/article/internal/store"
	"github.com/sirupsen/logrus"
)

// ChainAuditTask walks the published articles and checks that every ledger
// reference still has a matching audit row. A dangling reference means the
// mirror and the audit trail went out of sync and needs operator attention.
type ChainAuditTask struct {
	schedule string
	store    store.Store
}

func NewChainAuditTask(schedule string, store store.Store) *ChainAuditTask {
	return &ChainAuditTask{
		schedule: schedule,
		store:    store,
	}
}

func (c *ChainAuditTask) Schedule() string {
	return c.schedule
}

func (c *ChainAuditTask) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	articles, err := c.store.ListArticles(ctx)
	if err != nil {
		logrus.Errorf("chain audit: failed to list articles: %v", err)
		return
	}

	dangling := mapset.NewSet[string]()
	for _, article := range articles {
		ref, err := article.ChainRef()
		if err != nil {
			logrus.Errorf("chain audit: article %s has a corrupt chain reference: %v", article.AID, err)
			continue
		}

		if ref == nil {
			continue
		}

		_, err = c.store.GetArTxRecord(ctx, ref.TxID)
		if errors.Is(err, store.ErrArTxRecordNotFound) {
			dangling.Add(article.AID)
			logrus.Warnf("chain audit: article %s references tx %s with no audit row", article.AID, ref.TxID)
			continue
		}

		if err != nil {
			logrus.Errorf("chain audit: failed to load audit row for tx %s: %v", ref.TxID, err)
		}
	}

	if dangling.Cardinality() > 0 {
		logrus.Warnf("chain audit: found %d articles with dangling ledger references", dangling.Cardinality())
	}
}
