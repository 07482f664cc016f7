package shared

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActorRoundTripsThroughContext(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	require.False(t, ok)

	ctx := ContextWithActor(context.Background(), Actor{ID: 7, CompanyID: 3})
	actor, ok := ActorFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, int64(7), actor.ID)
	require.Equal(t, int64(3), actor.CompanyID)
}

func TestPaginationFromQuery(t *testing.T) {
	p := PaginationFromQuery(url.Values{"page": {"3"}, "per_page": {"50"}})
	require.Equal(t, 50, p.Limit())
	require.Equal(t, 100, p.Offset())

	p = PaginationFromQuery(url.Values{"page": {"x"}, "per_page": {"5000"}})
	require.Equal(t, 1, p.Page)
	require.Equal(t, maxPerPage, p.Limit())
	require.Equal(t, 0, p.Offset())
}

func TestAuditLogValidate(t *testing.T) {
	require.Error(t, AuditLog{Action: "journal.post"}.Validate())
	require.NoError(t, AuditLog{Action: "journal.post", Entity: "journal_entry", EntityID: "1"}.Validate())
}

func TestAuditLoggerRequiresPool(t *testing.T) {
	var logger *AuditLogger
	require.Error(t, logger.Record(context.Background(), AuditLog{}))
}
