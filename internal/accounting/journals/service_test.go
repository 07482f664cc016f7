package journals

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

const (
	cashAccount    int64 = 1
	revenueAccount int64 = 2
	closedAccount  int64 = 3
)

var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func testRegistry() accounts.MapRegistry {
	return accounts.MapRegistry{
		cashAccount:    {ID: cashAccount, CompanyID: 1, Code: "1100", NormalSide: accounts.NormalSideDebit, Currency: "IDR", IsActive: true},
		revenueAccount: {ID: revenueAccount, CompanyID: 1, Code: "4100", NormalSide: accounts.NormalSideCredit, Currency: "IDR", IsActive: true},
		closedAccount:  {ID: closedAccount, CompanyID: 1, Code: "1999", NormalSide: accounts.NormalSideDebit, Currency: "IDR", IsActive: false},
	}
}

type recordingAudit struct {
	logs []internalShared.AuditLog
}

func (a *recordingAudit) Record(ctx context.Context, log internalShared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type recordingObserver struct {
	posted    []string
	conflicts []string
	rejected  []string
}

func (o *recordingObserver) EntryPosted(source string)   { o.posted = append(o.posted, source) }
func (o *recordingObserver) TxConflict(operation string) { o.conflicts = append(o.conflicts, operation) }
func (o *recordingObserver) LockRejected(module string)  { o.rejected = append(o.rejected, module) }

type fixture struct {
	svc      *Service
	repo     *memoryRepo
	audit    *recordingAudit
	observer *recordingObserver
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	observer := &recordingObserver{}
	svc := NewService(repo, testRegistry(), periods.NewEnforcer(observer), audit, nil)
	svc.WithNow(func() time.Time { return testNow })
	svc.WithObserver(observer)
	return fixture{svc: svc, repo: repo, audit: audit, observer: observer}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func balancedLines(amount string) []LineInput {
	return []LineInput{
		{AccountID: cashAccount, Debit: dec(amount)},
		{AccountID: revenueAccount, Credit: dec(amount)},
	}
}

func salesDraft(t *testing.T, f fixture, date time.Time) JournalEntry {
	t.Helper()
	entry, err := f.svc.CreateManual(context.Background(), CreateInput{
		Header: Header{CompanyID: 1, Module: shared.ModuleSales, Date: date, Currency: "IDR", Description: "invoice 7", ActorID: 5},
		Lines:  balancedLines("100"),
	})
	require.NoError(t, err)
	return entry
}

func post(f fixture, id int64) (JournalEntry, error) {
	return f.svc.Post(context.Background(), PostInput{EntryID: id, CompanyID: 1, ActorID: 8})
}

func requireBalanced(t *testing.T, repo *memoryRepo) {
	t.Helper()
	for _, e := range repo.entries {
		debit, credit := decimal.Zero, decimal.Zero
		for _, l := range e.Lines {
			debit = debit.Add(l.Debit)
			credit = credit.Add(l.Credit)
		}
		require.True(t, shared.WithinTolerance(debit, credit), "entry %s unbalanced", e.Number)
	}
}

func TestCreateManualPersistsDraft(t *testing.T) {
	f := newFixture(t)
	entry := salesDraft(t, f, day(2024, 1, 15))

	require.Equal(t, StatusDraft, entry.Status)
	require.Equal(t, SourceManual, entry.Source)
	require.Equal(t, "JE-000001", entry.Number)
	require.True(t, entry.TotalDebit.Equal(dec("100")))
	require.True(t, entry.TotalCredit.Equal(dec("100")))
	require.Nil(t, entry.ApprovedBy)
	require.Len(t, entry.Lines, 2)
	require.True(t, entry.Lines[0].BaseAmount.Equal(dec("100")))
	require.Equal(t, "IDR", entry.Lines[0].Currency)
	require.Equal(t, "journal.create", f.audit.logs[0].Action)
}

func TestCreateManualDefaultsModuleToAccountant(t *testing.T) {
	f := newFixture(t)
	entry, err := f.svc.CreateManual(context.Background(), CreateInput{
		Header: Header{CompanyID: 1, Date: day(2024, 1, 15), Currency: "IDR", ActorID: 5},
		Lines:  balancedLines("10"),
	})
	require.NoError(t, err)
	require.Equal(t, shared.ModuleAccountant, entry.Module)
}

func TestCreateManualIgnoresPeriodLock(t *testing.T) {
	f := newFixture(t)
	f.repo.lock(1, shared.ModuleSales, day(2024, 1, 31))
	entry := salesDraft(t, f, day(2024, 1, 15))
	require.Equal(t, StatusDraft, entry.Status)
}

func TestCreateManualRejectsUnbalancedLinesWithoutPersisting(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateManual(context.Background(), CreateInput{
		Header: Header{CompanyID: 1, Module: shared.ModuleSales, Date: day(2024, 1, 15), Currency: "IDR", ActorID: 5},
		Lines: []LineInput{
			{AccountID: cashAccount, Debit: dec("100")},
			{AccountID: revenueAccount, Credit: dec("90")},
		},
	})
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, f.repo.entries)
	require.Empty(t, f.audit.logs)
}

func TestPostDraftTwiceFailsWithInvalidState(t *testing.T) {
	f := newFixture(t)
	draft := salesDraft(t, f, day(2024, 2, 1))

	posted, err := post(f, draft.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPosted, posted.Status)
	require.NotNil(t, posted.ApprovedBy)
	require.Equal(t, int64(8), *posted.ApprovedBy)
	require.Equal(t, testNow, *posted.ApprovedAt)

	before := f.repo.entries[draft.ID].Lines
	_, err = post(f, draft.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.Equal(t, before, f.repo.entries[draft.ID].Lines)
	require.Equal(t, []string{string(SourceManual)}, f.observer.posted)
}

func TestPostRespectsPeriodLock(t *testing.T) {
	f := newFixture(t)
	f.repo.lock(1, shared.ModuleSales, day(2024, 1, 31))

	locked := salesDraft(t, f, day(2024, 1, 15))
	_, err := post(f, locked.ID)
	require.ErrorIs(t, err, shared.ErrPeriodLocked)
	var lockedErr *shared.PeriodLockedError
	require.True(t, errors.As(err, &lockedErr))
	require.Equal(t, day(2024, 1, 31), lockedErr.LockDate)
	require.Equal(t, StatusDraft, f.repo.entries[locked.ID].Status)
	require.Equal(t, []string{"sales"}, f.observer.rejected)

	open := salesDraft(t, f, day(2024, 2, 1))
	posted, err := post(f, open.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPosted, posted.Status)
}

func TestPostLockIsScopedToModuleAndCompany(t *testing.T) {
	f := newFixture(t)
	f.repo.lock(1, shared.ModulePurchases, day(2024, 1, 31))
	f.repo.lock(2, shared.ModuleSales, day(2024, 1, 31))

	draft := salesDraft(t, f, day(2024, 1, 15))
	_, err := post(f, draft.ID)
	require.NoError(t, err)
}

func TestPostInsidePartialUnlockWindow(t *testing.T) {
	f := newFixture(t)
	f.repo.lock(1, shared.ModuleSales, day(2024, 1, 31), periods.Exception{
		ID: 1, LockID: 1, FromDate: day(2024, 1, 10), ToDate: day(2024, 1, 20), Reason: "late invoice",
	})

	inside := salesDraft(t, f, day(2024, 1, 15))
	_, err := post(f, inside.ID)
	require.NoError(t, err)

	outside := salesDraft(t, f, day(2024, 1, 25))
	_, err = post(f, outside.ID)
	require.ErrorIs(t, err, shared.ErrPeriodLocked)
}

func TestPostRevalidatesAgainstRegistry(t *testing.T) {
	f := newFixture(t)
	draft := salesDraft(t, f, day(2024, 2, 1))

	registry := testRegistry()
	acct := registry[revenueAccount]
	acct.IsActive = false
	registry[revenueAccount] = acct
	f.svc.registry = registry

	_, err := post(f, draft.ID)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, StatusDraft, f.repo.entries[draft.ID].Status)
}

func TestPostUnknownEntryOrOtherCompany(t *testing.T) {
	f := newFixture(t)
	_, err := post(f, 42)
	require.ErrorIs(t, err, shared.ErrNotFound)

	draft := salesDraft(t, f, day(2024, 2, 1))
	_, err = f.svc.Post(context.Background(), PostInput{EntryID: draft.ID, CompanyID: 2, ActorID: 8})
	require.ErrorIs(t, err, shared.ErrJournalNotFound)
}

func TestUpdateDraftReplacesLines(t *testing.T) {
	f := newFixture(t)
	draft := salesDraft(t, f, day(2024, 1, 15))

	updated, err := f.svc.UpdateDraft(context.Background(), UpdateInput{
		EntryID: draft.ID,
		Header:  Header{CompanyID: 1, Module: shared.ModuleSales, Date: day(2024, 1, 16), Currency: "IDR", Description: "fixed", ActorID: 6},
		Lines: []LineInput{
			{AccountID: cashAccount, Debit: dec("60")},
			{AccountID: cashAccount, Debit: dec("40")},
			{AccountID: revenueAccount, Credit: dec("100")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, draft.Number, updated.Number)
	require.Equal(t, int64(5), updated.CreatedBy)
	require.Len(t, f.repo.entries[draft.ID].Lines, 3)
	require.Equal(t, day(2024, 1, 16), f.repo.entries[draft.ID].Date)
	require.Equal(t, StatusDraft, f.repo.entries[draft.ID].Status)
}

func TestUpdateDraftOfLockedDateIsAllowed(t *testing.T) {
	f := newFixture(t)
	f.repo.lock(1, shared.ModuleSales, day(2024, 1, 31))
	draft := salesDraft(t, f, day(2024, 1, 15))
	_, err := f.svc.UpdateDraft(context.Background(), UpdateInput{
		EntryID: draft.ID,
		Header:  Header{CompanyID: 1, Module: shared.ModuleSales, Date: day(2024, 1, 15), Currency: "IDR", ActorID: 6},
		Lines:   balancedLines("50"),
	})
	require.NoError(t, err)
}

func TestUpdatePostedEntryFails(t *testing.T) {
	f := newFixture(t)
	draft := salesDraft(t, f, day(2024, 2, 1))
	_, err := post(f, draft.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateDraft(context.Background(), UpdateInput{
		EntryID: draft.ID,
		Header:  Header{CompanyID: 1, Module: shared.ModuleSales, Date: day(2024, 2, 1), Currency: "IDR", ActorID: 6},
		Lines:   balancedLines("999"),
	})
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.True(t, f.repo.entries[draft.ID].Lines[0].Debit.Equal(dec("100")))
}

func TestDeleteDraftHidesEntry(t *testing.T) {
	f := newFixture(t)
	draft := salesDraft(t, f, day(2024, 2, 1))
	kept := salesDraft(t, f, day(2024, 2, 2))

	require.NoError(t, f.svc.DeleteDraft(context.Background(), DeleteInput{EntryID: draft.ID, CompanyID: 1, ActorID: 5}))

	_, err := f.svc.Get(context.Background(), 1, draft.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	listed, err := f.svc.List(context.Background(), ListFilter{CompanyID: 1})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, kept.ID, listed[0].ID)

	withDeleted, err := f.svc.List(context.Background(), ListFilter{CompanyID: 1, IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, withDeleted, 2)

	err = f.svc.DeleteDraft(context.Background(), DeleteInput{EntryID: draft.ID, CompanyID: 1, ActorID: 5})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestDeletePostedEntryFails(t *testing.T) {
	f := newFixture(t)
	draft := salesDraft(t, f, day(2024, 2, 1))
	_, err := post(f, draft.ID)
	require.NoError(t, err)

	err = f.svc.DeleteDraft(context.Background(), DeleteInput{EntryID: draft.ID, CompanyID: 1, ActorID: 5})
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.Equal(t, StatusPosted, f.repo.entries[draft.ID].Status)
}

func TestDeleteDraftInsideLockedPeriodFails(t *testing.T) {
	f := newFixture(t)
	draft := salesDraft(t, f, day(2024, 1, 15))
	f.repo.lock(1, shared.ModuleSales, day(2024, 1, 31))

	err := f.svc.DeleteDraft(context.Background(), DeleteInput{EntryID: draft.ID, CompanyID: 1, ActorID: 5})
	require.ErrorIs(t, err, shared.ErrPeriodLocked)
	require.Equal(t, StatusDraft, f.repo.entries[draft.ID].Status)
}

func TestDeleteUnknownEntry(t *testing.T) {
	f := newFixture(t)
	err := f.svc.DeleteDraft(context.Background(), DeleteInput{EntryID: 99, CompanyID: 1, ActorID: 5})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReverseMirrorsLinesAndLinksEntries(t *testing.T) {
	f := newFixture(t)
	draft := salesDraft(t, f, day(2024, 2, 1))
	original, err := post(f, draft.ID)
	require.NoError(t, err)

	result, err := f.svc.Reverse(context.Background(), ReverseInput{EntryID: original.ID, CompanyID: 1, ActorID: 8, Reason: "duplicate invoice"})
	require.NoError(t, err)

	reversal := result.Reversal
	require.Equal(t, StatusPosted, reversal.Status)
	require.Equal(t, SourceSystem, reversal.Source)
	require.Equal(t, shared.ModuleSales, reversal.Module)
	require.Equal(t, day(2024, 3, 10), reversal.Date)
	require.True(t, strings.HasPrefix(reversal.Description, "Reversal of "+original.Number))
	require.NotNil(t, reversal.ReversalOfID)
	require.Equal(t, original.ID, *reversal.ReversalOfID)
	require.Len(t, reversal.Lines, len(original.Lines))
	for i, line := range original.Lines {
		require.Equal(t, line.AccountID, reversal.Lines[i].AccountID)
		require.True(t, line.Debit.Equal(reversal.Lines[i].Credit))
		require.True(t, line.Credit.Equal(reversal.Lines[i].Debit))
	}

	stored := f.repo.entries[original.ID]
	require.Equal(t, StatusReversed, stored.Status)
	require.Equal(t, reversal.ID, *stored.ReversedByID)
	require.Equal(t, "duplicate invoice", stored.ReversalReason)
	require.Equal(t, testNow, *stored.ReversedAt)
	requireBalanced(t, f.repo)

	_, err = f.svc.Reverse(context.Background(), ReverseInput{EntryID: original.ID, CompanyID: 1, ActorID: 8, Reason: "again"})
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.Len(t, f.repo.entries, 2)
}

func TestReverseRequiresPostedEntry(t *testing.T) {
	f := newFixture(t)
	draft := salesDraft(t, f, day(2024, 2, 1))
	_, err := f.svc.Reverse(context.Background(), ReverseInput{EntryID: draft.ID, CompanyID: 1, ActorID: 8, Reason: "x"})
	require.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = f.svc.Reverse(context.Background(), ReverseInput{EntryID: draft.ID, CompanyID: 1, ActorID: 8})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestReverseRejectedByLockOnReversalDateLeavesOriginalPosted(t *testing.T) {
	f := newFixture(t)
	draft := salesDraft(t, f, day(2024, 2, 1))
	original, err := post(f, draft.ID)
	require.NoError(t, err)
	f.repo.lock(1, shared.ModuleSales, day(2024, 3, 10))

	_, err = f.svc.Reverse(context.Background(), ReverseInput{EntryID: original.ID, CompanyID: 1, ActorID: 8, Reason: "late"})
	require.ErrorIs(t, err, shared.ErrPeriodLocked)
	require.Equal(t, StatusPosted, f.repo.entries[original.ID].Status)
	require.Nil(t, f.repo.entries[original.ID].ReversedByID)
	require.Len(t, f.repo.entries, 1)
}

func TestReverseChecksReversalDateNotOriginalDate(t *testing.T) {
	f := newFixture(t)
	draft := salesDraft(t, f, day(2024, 1, 15))
	original, err := post(f, draft.ID)
	require.NoError(t, err)
	f.repo.lock(1, shared.ModuleSales, day(2024, 1, 31))

	result, err := f.svc.Reverse(context.Background(), ReverseInput{EntryID: original.ID, CompanyID: 1, ActorID: 8, Reason: "wrong customer"})
	require.NoError(t, err)
	require.Equal(t, day(2024, 3, 10), result.Reversal.Date)
}

func systemEntry(ref uuid.UUID) JournalEntry {
	return NewCurrencyAdjustmentEntry(Header{
		CompanyID: 1, Date: day(2024, 2, 5), Currency: "IDR", Description: "fx", ActorID: 3,
	}, ref, balancedLines("10"))
}

func TestPostSystemCreatesPostedEntryOnce(t *testing.T) {
	f := newFixture(t)
	ref := uuid.New()

	entry, err := f.svc.PostSystem(context.Background(), systemEntry(ref))
	require.NoError(t, err)
	require.Equal(t, StatusPosted, entry.Status)
	require.Equal(t, SourceCurrencyAdjustment, entry.Source)
	require.Equal(t, shared.ModuleBanking, entry.Module)
	require.Equal(t, int64(3), *entry.ApprovedBy)

	_, err = f.svc.PostSystem(context.Background(), systemEntry(ref))
	require.ErrorIs(t, err, shared.ErrSourceAlreadyLinked)
	require.ErrorIs(t, err, shared.ErrConflict)
	require.False(t, shared.IsRetryable(err))
	require.Len(t, f.repo.entries, 1)
}

func TestPostSystemConsultsLock(t *testing.T) {
	f := newFixture(t)
	f.repo.lock(1, shared.ModuleBanking, day(2024, 2, 29))
	_, err := f.svc.PostSystem(context.Background(), systemEntry(uuid.New()))
	require.ErrorIs(t, err, shared.ErrPeriodLocked)
	require.Empty(t, f.repo.entries)
}

func TestPostSystemRejectsManualEntries(t *testing.T) {
	f := newFixture(t)
	manual := NewManualEntry(Header{CompanyID: 1, Date: day(2024, 2, 5), Currency: "IDR"}, balancedLines("10"))
	_, err := f.svc.PostSystem(context.Background(), manual)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestAccountBalanceIsDerivedFromPostedLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := salesDraft(t, f, day(2024, 2, 1))
	_, err := post(f, first.ID)
	require.NoError(t, err)
	salesDraft(t, f, day(2024, 2, 2))

	balance, err := f.svc.AccountBalance(ctx, 1, cashAccount, day(2024, 2, 28))
	require.NoError(t, err)
	require.True(t, balance.Net.Equal(dec("100")), balance.Net.String())

	revenue, err := f.svc.AccountBalance(ctx, 1, revenueAccount, day(2024, 2, 28))
	require.NoError(t, err)
	require.True(t, revenue.Net.Equal(dec("100")), revenue.Net.String())

	_, err = f.svc.Reverse(ctx, ReverseInput{EntryID: first.ID, CompanyID: 1, ActorID: 8, Reason: "void"})
	require.NoError(t, err)
	balance, err = f.svc.AccountBalance(ctx, 1, cashAccount, day(2024, 3, 31))
	require.NoError(t, err)
	require.True(t, balance.Net.IsZero())

	_, err = f.svc.AccountBalance(ctx, 1, 404, day(2024, 3, 31))
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestConflictIsSurfacedAsRetryable(t *testing.T) {
	f := newFixture(t)
	draft := salesDraft(t, f, day(2024, 2, 1))
	f.repo.failTx = shared.FromTxError(db.ErrTxConflict)

	_, err := post(f, draft.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
	require.True(t, shared.IsRetryable(err))
	require.Equal(t, []string{"journal.post"}, f.observer.conflicts)
}

func TestListFiltersByModuleAndDate(t *testing.T) {
	f := newFixture(t)
	salesDraft(t, f, day(2024, 1, 5))
	salesDraft(t, f, day(2024, 2, 5))
	_, err := f.svc.CreateManual(context.Background(), CreateInput{
		Header: Header{CompanyID: 1, Module: shared.ModuleBanking, Date: day(2024, 2, 6), Currency: "IDR", ActorID: 5},
		Lines:  balancedLines("5"),
	})
	require.NoError(t, err)

	from := day(2024, 2, 1)
	listed, err := f.svc.List(context.Background(), ListFilter{CompanyID: 1, Module: shared.ModuleSales, From: &from})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, day(2024, 2, 5), listed[0].Date)

	to := day(2024, 1, 1)
	_, err = f.svc.List(context.Background(), ListFilter{From: &from, To: &to})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestTransitionTable(t *testing.T) {
	require.True(t, CanTransition(StatusDraft, StatusPosted))
	require.True(t, CanTransition(StatusDraft, StatusDeleted))
	require.True(t, CanTransition(StatusPosted, StatusReversed))
	require.False(t, CanTransition(StatusPosted, StatusDraft))
	require.False(t, CanTransition(StatusPosted, StatusDeleted))
	require.False(t, CanTransition(StatusReversed, StatusPosted))
	require.False(t, CanTransition(StatusDeleted, StatusDraft))
}

func TestPostSeesDeactivationThroughAccountCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	source := testRegistry()
	cached := accounts.NewCachedRegistry(source, client, time.Hour, nil)

	repo := newMemoryRepo()
	svc := NewService(repo, cached, periods.NewEnforcer(nil), &recordingAudit{}, nil)
	svc.WithNow(func() time.Time { return testNow })
	draft, err := svc.CreateManual(context.Background(), CreateInput{
		Header: Header{CompanyID: 1, Module: shared.ModuleSales, Date: day(2024, 3, 1), Currency: "IDR", ActorID: 5},
		Lines:  balancedLines("100"),
	})
	require.NoError(t, err)
	require.True(t, mr.Exists(accounts.CacheKey(revenueAccount)))

	deactivated := source[revenueAccount]
	deactivated.IsActive = false
	source[revenueAccount] = deactivated

	_, err = svc.Post(context.Background(), PostInput{EntryID: draft.ID, CompanyID: 1, ActorID: 8})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, StatusDraft, repo.entries[draft.ID].Status)
}
