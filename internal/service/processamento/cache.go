package processamento

import (
	"context"
	"errors"

	"github.com/dmlopes/processamento/internal/domain/models"
	"github.com/dmlopes/processamento/internal/repository/mongodb"
)

// SessionCache is a read-through cache over the document store, scoped to one
// processing session and discarded with it. Writes always go directly to the
// store; only the session's own writer refreshes an entry (the aggregate field
// is single-writer, so no cross-session invalidation is needed).
type SessionCache struct {
	store Store
	docs  map[string]*models.DailyProductionDocument
}

// NewSessionCache creates an empty cache bound to the given store.
func NewSessionCache(store Store) *SessionCache {
	return &SessionCache{
		store: store,
		docs:  make(map[string]*models.DailyProductionDocument),
	}
}

// Get returns the document for dateKey, fetching it from the store on first
// access. Misses are memoized too: a date known to be absent never triggers a
// second round-trip within the session. Absent documents yield (nil, nil).
func (c *SessionCache) Get(ctx context.Context, dateKey string) (*models.DailyProductionDocument, error) {
	if doc, ok := c.docs[dateKey]; ok {
		return doc, nil
	}

	doc, err := c.store.GetDailyDocument(ctx, dateKey)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			c.docs[dateKey] = nil
			return nil, nil
		}
		return nil, err
	}

	c.docs[dateKey] = doc
	return doc, nil
}

// Put refreshes the cached entry after this session persisted a change.
func (c *SessionCache) Put(doc *models.DailyProductionDocument) {
	if doc == nil {
		return
	}
	c.docs[doc.DateKey] = doc
}
