package services

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/username/ustax/src/database"
	"github.com/username/ustax/src/jurisdictions"
	"github.com/username/ustax/src/model"
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/money"
	"github.com/username/ustax/src/rules"
	"github.com/username/ustax/src/validation"
)

func dollars(d int64) money.Cents { return money.FromDollars(d) }

// newService has no cache janitor goroutine, so leak checks stay clean.
func newService(t *testing.T) TaxService {
	t.Helper()
	return NewTaxService(rules.Builtin(), nil, cache.New(DefaultCacheExpiration, 0), 0)
}

func wageEarner() models.FederalInput {
	return models.FederalInput{
		FilingStatus: models.Single,
		Taxpayer:     models.Person{Age: 40},
		Income: models.Income{
			Wages:           dollars(60000),
			TaxableInterest: dollars(200),
		},
	}
}

func TestComputeFederalCaches(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.ComputeFederal(ctx, 2025, wageEarner())
	require.NoError(t, err)
	assert.Equal(t, dollars(60200), first.AGI)
	assert.Equal(t, dollars(45200), first.TaxableIncome)

	second, err := svc.ComputeFederal(ctx, 2025, wageEarner())
	require.NoError(t, err)
	assert.Same(t, first, second)

	in := wageEarner()
	in.Income.Wages = dollars(60001)
	third, err := svc.ComputeFederal(ctx, 2025, in)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestComputeFederalErrors(t *testing.T) {
	svc := newService(t)

	_, err := svc.ComputeFederal(context.Background(), 1999, wageEarner())
	assert.ErrorIs(t, err, rules.ErrUnknownYear)

	in := wageEarner()
	in.Income.Wages = -dollars(1)
	_, err = svc.ComputeFederal(context.Background(), 2025, in)
	assert.ErrorIs(t, err, validation.ErrValidationFailed)
}

func TestComputeJurisdictionFromFederalInput(t *testing.T) {
	svc := newService(t)
	fed := wageEarner()

	res, err := svc.ComputeJurisdiction(context.Background(), 2025, "il", JurisdictionRequest{FederalInput: &fed})
	require.NoError(t, err)
	assert.Equal(t, "IL", res.Code)
	assert.Equal(t, dollars(60200), res.StateAGI)
	assert.Equal(t, money.Cents(283883), res.StateTax)

	_, err = svc.ComputeJurisdiction(context.Background(), 2025, "ZZ", JurisdictionRequest{FederalInput: &fed})
	assert.ErrorIs(t, err, jurisdictions.ErrUnsupportedJurisdiction)

	bad := JurisdictionRequest{FederalInput: &fed, Input: models.JurisdictionTaxInput{Dependents: -1}}
	_, err = svc.ComputeJurisdiction(context.Background(), 2025, "IL", bad)
	assert.ErrorIs(t, err, validation.ErrValidationFailed)
}

func TestComputeJurisdictionRejectsOutOfRangeFederalResult(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, agi := range []money.Cents{math.MaxInt64 - 100, dollars(50_000_000_000_000)} {
		req := JurisdictionRequest{Input: models.JurisdictionTaxInput{
			FilingStatus: models.Single,
			Federal:      models.FederalResult{AGI: agi},
			Additions:    dollars(10),
		}}
		res, err := svc.ComputeJurisdiction(ctx, 2025, "IL", req)
		require.Error(t, err)
		assert.Nil(t, res)
		var inputErr *validation.InputValidationError
		require.True(t, errors.As(err, &inputErr))
		require.Len(t, inputErr.Fields, 1)
		assert.Equal(t, "federal.agi", inputErr.Fields[0].Field)
	}

	req := JurisdictionRequest{Input: models.JurisdictionTaxInput{
		FilingStatus: models.Single,
		Federal: models.FederalResult{
			AGI:     dollars(60200),
			Income:  models.IncomeSummary{RetirementDistributions: -dollars(1)},
			Credits: models.Credits{EarnedIncome: money.MaxAmount + 1},
		},
	}}
	_, err := svc.CompareJurisdictions(ctx, 2025, []string{"IL", "TX"}, req)
	var inputErr *validation.InputValidationError
	require.True(t, errors.As(err, &inputErr))
	var fields []string
	for _, f := range inputErr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"federal.income.retirement_distributions", "federal.credits.earned_income"}, fields)
}

func TestCompareJurisdictions(t *testing.T) {
	opt := goleak.IgnoreCurrent()
	defer goleak.VerifyNone(t, opt)

	svc := newService(t)
	fed := wageEarner()
	req := JurisdictionRequest{FederalInput: &fed, Input: models.JurisdictionTaxInput{StateWithheld: dollars(1000)}}

	results, err := svc.CompareJurisdictions(context.Background(), 2025, []string{"ny", "TX", "IL"}, req)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "NY", results[0].Code)
	assert.Equal(t, "TX", results[1].Code)
	assert.Equal(t, "IL", results[2].Code)
	assert.Zero(t, results[1].StateTax)
	assert.Equal(t, dollars(1000), results[1].StateRefundOrOwe)
	assert.Equal(t, money.Cents(283883), results[2].StateTax)

	all, err := svc.CompareJurisdictions(context.Background(), 2025, nil, req)
	require.NoError(t, err)
	assert.Len(t, all, 26)

	_, err = svc.CompareJurisdictions(context.Background(), 2025, []string{"IL", "ZZ"}, req)
	assert.ErrorIs(t, err, jurisdictions.ErrUnsupportedJurisdiction)
}

func TestCompareJurisdictionsHonoursCancellation(t *testing.T) {
	opt := goleak.IgnoreCurrent()
	defer goleak.VerifyNone(t, opt)

	svc := newService(t)
	fed := wageEarner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CompareJurisdictions(ctx, 2025, []string{"IL", "NY", "CA"}, JurisdictionRequest{FederalInput: &fed})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListJurisdictions(t *testing.T) {
	svc := newService(t)
	assert.Equal(t, []int{2024, 2025}, svc.Years())

	configs, err := svc.ListJurisdictions(2024)
	require.NoError(t, err)
	assert.Len(t, configs, 9)

	_, err = svc.ListJurisdictions(2030)
	assert.ErrorIs(t, err, rules.ErrUnknownYear)
}

func TestSnapshots(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewTaxService(rules.Builtin(), db, nil, 0)
	ctx := context.Background()
	fed := wageEarner()

	snap, err := svc.SaveSnapshot(ctx, "alice", SnapshotRequest{Kind: model.SnapshotFederal, Year: 2025, Federal: &fed})
	require.NoError(t, err)
	require.NotEmpty(t, snap.ID)
	require.NotEmpty(t, snap.ETag)

	view, err := svc.LoadSnapshot(ctx, "alice", snap.ID)
	require.NoError(t, err)
	assert.False(t, view.Stale)
	require.NotNil(t, view.Federal)
	assert.Nil(t, view.Jurisdiction)
	assert.Equal(t, dollars(60200), view.Federal.AGI)
	assert.Equal(t, fed, *view.Request.Federal)

	_, err = svc.LoadSnapshot(ctx, "bob", snap.ID)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	state, err := svc.SaveSnapshot(ctx, "alice", SnapshotRequest{
		Kind:         model.SnapshotJurisdiction,
		Year:         2025,
		Jurisdiction: "IL",
		State:        &JurisdictionRequest{FederalInput: &fed},
	})
	require.NoError(t, err)
	view, err = svc.LoadSnapshot(ctx, "alice", state.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Jurisdiction)
	assert.Equal(t, money.Cents(283883), view.Jurisdiction.StateTax)

	list, err := svc.ListSnapshots(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.ErrorIs(t, svc.DeleteSnapshot(ctx, "bob", snap.ID), ErrSnapshotNotFound)
	require.NoError(t, svc.DeleteSnapshot(ctx, "alice", snap.ID))
	_, err = svc.LoadSnapshot(ctx, "alice", snap.ID)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.ErrorIs(t, svc.DeleteSnapshot(ctx, "alice", snap.ID), ErrSnapshotNotFound)
	list, err = svc.ListSnapshots(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.SaveSnapshot(ctx, "alice", SnapshotRequest{Kind: "other", Year: 2025})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	_, err = svc.SaveSnapshot(ctx, "alice", SnapshotRequest{Kind: model.SnapshotFederal, Year: 2025})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestSnapshotStaleAfterStoredResultChanges(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "stale.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewTaxService(rules.Builtin(), db, nil, 0)
	fed := wageEarner()
	snap, err := svc.SaveSnapshot(context.Background(), "alice", SnapshotRequest{Kind: model.SnapshotFederal, Year: 2025, Federal: &fed})
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE snapshots SET etag = 'computed-under-older-rules' WHERE id = ?`, snap.ID)
	require.NoError(t, err)

	view, err := svc.LoadSnapshot(context.Background(), "alice", snap.ID)
	require.NoError(t, err)
	assert.True(t, view.Stale)
}

func TestSnapshotsDisabledWithoutDatabase(t *testing.T) {
	svc := newService(t)
	fed := wageEarner()
	_, err := svc.SaveSnapshot(context.Background(), "alice", SnapshotRequest{Kind: model.SnapshotFederal, Year: 2025, Federal: &fed})
	assert.ErrorIs(t, err, ErrSnapshotStoreUnavailable)
	_, err = svc.LoadSnapshot(context.Background(), "alice", "x")
	assert.ErrorIs(t, err, ErrSnapshotStoreUnavailable)
	assert.ErrorIs(t, svc.DeleteSnapshot(context.Background(), "alice", "x"), ErrSnapshotStoreUnavailable)
}
