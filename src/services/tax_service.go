package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/username/ustax/src/federal"
	"github.com/username/ustax/src/jurisdictions"
	"github.com/username/ustax/src/logger"
	"github.com/username/ustax/src/model"
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/rules"
	"github.com/username/ustax/src/utils"
	"github.com/username/ustax/src/validation"
)

const (
	ckFederalResult      = "res_federal_%d_%s"
	ckJurisdictionResult = "res_jurisdiction_%d_%s_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute

	maxListedSnapshots = 100
)

type taxServiceImpl struct {
	catalog     *rules.Catalog
	calculator  *federal.Calculator
	db          *sql.DB
	resultCache *cache.Cache
	cacheTTL    time.Duration

	mu         sync.Mutex
	registries map[int]*jurisdictions.Registry
}

// NewTaxService wires the calculators to a rule catalog. db may be nil, which disables
// snapshots; resultCache may be nil, which disables result caching.
func NewTaxService(catalog *rules.Catalog, db *sql.DB, resultCache *cache.Cache, cacheTTL time.Duration) TaxService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheExpiration
	}
	return &taxServiceImpl{
		catalog:     catalog,
		calculator:  federal.NewCalculator(catalog),
		db:          db,
		resultCache: resultCache,
		cacheTTL:    cacheTTL,
		registries:  make(map[int]*jurisdictions.Registry),
	}
}

func (s *taxServiceImpl) Years() []int {
	return s.catalog.Years()
}

// registry builds the jurisdiction registry for a year on first use.
func (s *taxServiceImpl) registry(year int) (*jurisdictions.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reg, ok := s.registries[year]; ok {
		return reg, nil
	}
	yr, err := s.catalog.Get(year)
	if err != nil {
		return nil, err
	}
	reg, err := jurisdictions.NewRegistry(yr)
	if err != nil {
		logger.L.Error("Failed to build jurisdiction registry", "year", year, "error", err)
		return nil, err
	}
	s.registries[year] = reg
	return reg, nil
}

func (s *taxServiceImpl) ListJurisdictions(year int) ([]jurisdictions.Config, error) {
	reg, err := s.registry(year)
	if err != nil {
		return nil, err
	}
	return reg.Configs(), nil
}

func (s *taxServiceImpl) cached(key string) (any, bool) {
	if s.resultCache == nil {
		return nil, false
	}
	return s.resultCache.Get(key)
}

func (s *taxServiceImpl) store(key string, v any) {
	if s.resultCache != nil {
		s.resultCache.Set(key, v, s.cacheTTL)
	}
}

func (s *taxServiceImpl) ComputeFederal(ctx context.Context, year int, in models.FederalInput) (*models.FederalResult, error) {
	log := logger.FromContext(ctx)
	inputHash, err := utils.GenerateETag(in)
	if err != nil {
		return nil, err
	}
	cacheKey := fmt.Sprintf(ckFederalResult, year, inputHash)
	if v, found := s.cached(cacheKey); found {
		log.Debug("Cache hit for federal result", "year", year)
		return v.(*models.FederalResult), nil
	}

	start := time.Now()
	log.Info("ComputeFederal START", "year", year, "filingStatus", in.FilingStatus.String())
	checkForeignCountries(ctx, in.ForeignIncome)

	res, err := s.calculator.Compute(year, in)
	if err != nil {
		log.Warn("ComputeFederal failed", "year", year, "error", err)
		return nil, err
	}
	s.store(cacheKey, res)
	log.Info("ComputeFederal END", "year", year, "agi", res.AGI.String(), "totalTax", res.TotalTax.String(),
		"diagnostics", len(res.Diagnostics), "duration", time.Since(start))
	return res, nil
}

// checkForeignCountries logs source codes missing from the country table, when one is loaded.
func checkForeignCountries(ctx context.Context, sources []models.ForeignIncomeSource) {
	if !utils.CountryDataLoaded() {
		return
	}
	for _, src := range sources {
		if src.Country == "" {
			continue
		}
		if _, ok := utils.LookupCountry(src.Country); !ok {
			logger.FromContext(ctx).Warn("Foreign income reported for an unknown country code", "country", src.Country)
		}
	}
}

// resolve fills in the federal result and the filing status of a jurisdiction request.
func (s *taxServiceImpl) resolve(ctx context.Context, year int, req JurisdictionRequest) (models.JurisdictionTaxInput, error) {
	in := req.Input
	if req.FederalInput != nil {
		fed, err := s.ComputeFederal(ctx, year, *req.FederalInput)
		if err != nil {
			return in, err
		}
		in.Federal = *fed
		if in.TaxpayerAge == 0 {
			in.TaxpayerAge = req.FederalInput.Taxpayer.Age
		}
		if in.SpouseAge == 0 && req.FederalInput.Spouse != nil {
			in.SpouseAge = req.FederalInput.Spouse.Age
		}
		if in.Dependents == 0 {
			in.Dependents = len(req.FederalInput.Dependents)
		}
	}
	if in.FilingStatus == 0 {
		in.FilingStatus = in.Federal.FilingStatus
	}
	if err := validation.ValidateJurisdictionInput(&in); err != nil {
		return in, err
	}
	return in, nil
}

func (s *taxServiceImpl) ComputeJurisdiction(ctx context.Context, year int, code string, req JurisdictionRequest) (*models.JurisdictionResult, error) {
	reg, err := s.registry(year)
	if err != nil {
		return nil, err
	}
	entry, err := reg.Lookup(code)
	if err != nil {
		return nil, err
	}
	in, err := s.resolve(ctx, year, req)
	if err != nil {
		return nil, err
	}
	return s.runJurisdiction(ctx, year, entry, in)
}

func (s *taxServiceImpl) runJurisdiction(ctx context.Context, year int, entry jurisdictions.Entry, in models.JurisdictionTaxInput) (*models.JurisdictionResult, error) {
	inputHash, err := utils.GenerateETag(in)
	if err != nil {
		return nil, err
	}
	cacheKey := fmt.Sprintf(ckJurisdictionResult, year, entry.Config.Code, inputHash)
	if v, found := s.cached(cacheKey); found {
		logger.FromContext(ctx).Debug("Cache hit for jurisdiction result", "year", year, "code", entry.Config.Code)
		return v.(*models.JurisdictionResult), nil
	}
	res := entry.Calculator(in)
	s.store(cacheKey, &res)
	return &res, nil
}

// CompareJurisdictions runs one jurisdiction per goroutine over the same input and
// returns the results in the order of codes. An empty codes list compares every
// registered jurisdiction. The first failure cancels the rest.
func (s *taxServiceImpl) CompareJurisdictions(ctx context.Context, year int, codes []string, req JurisdictionRequest) ([]models.JurisdictionResult, error) {
	reg, err := s.registry(year)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		for _, c := range reg.Configs() {
			codes = append(codes, c.Code)
		}
	}
	entries := make([]jurisdictions.Entry, len(codes))
	for i, code := range codes {
		if entries[i], err = reg.Lookup(code); err != nil {
			return nil, err
		}
	}
	in, err := s.resolve(ctx, year, req)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	start := time.Now()
	log.Info("CompareJurisdictions START", "year", year, "count", len(entries))

	results := make([]models.JurisdictionResult, len(entries))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, entry := range entries {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res, err := s.runJurisdiction(egCtx, year, entry, in)
			if err != nil {
				return fmt.Errorf("%s: %w", entry.Config.Code, err)
			}
			results[i] = *res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Warn("CompareJurisdictions failed", "year", year, "error", err)
		return nil, err
	}
	log.Info("CompareJurisdictions END", "year", year, "count", len(results), "duration", time.Since(start))
	return results, nil
}

// compute runs the computation a snapshot request describes.
func (s *taxServiceImpl) compute(ctx context.Context, req SnapshotRequest) (*models.FederalResult, *models.JurisdictionResult, error) {
	switch req.Kind {
	case model.SnapshotFederal:
		if req.Federal == nil {
			return nil, nil, fmt.Errorf("%w: federal input is required", ErrInvalidSnapshot)
		}
		fed, err := s.ComputeFederal(ctx, req.Year, *req.Federal)
		return fed, nil, err
	case model.SnapshotJurisdiction:
		if req.State == nil || req.Jurisdiction == "" {
			return nil, nil, fmt.Errorf("%w: jurisdiction code and state input are required", ErrInvalidSnapshot)
		}
		jr, err := s.ComputeJurisdiction(ctx, req.Year, req.Jurisdiction, *req.State)
		return nil, jr, err
	default:
		return nil, nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidSnapshot, req.Kind)
	}
}

func resultOf(fed *models.FederalResult, jr *models.JurisdictionResult) any {
	if fed != nil {
		return fed
	}
	return jr
}

func (s *taxServiceImpl) SaveSnapshot(ctx context.Context, owner string, req SnapshotRequest) (*model.Snapshot, error) {
	if s.db == nil {
		return nil, ErrSnapshotStoreUnavailable
	}
	fed, jr, err := s.compute(ctx, req)
	if err != nil {
		return nil, err
	}
	result := resultOf(fed, jr)

	inputJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot input: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot result: %w", err)
	}
	etag, err := utils.GenerateETag(result)
	if err != nil {
		return nil, err
	}

	snap := &model.Snapshot{
		ID:           uuid.NewString(),
		Owner:        owner,
		Kind:         req.Kind,
		TaxYear:      req.Year,
		Jurisdiction: req.Jurisdiction,
		InputJSON:    string(inputJSON),
		ResultJSON:   string(resultJSON),
		ETag:         etag,
	}
	if err := snap.CreateSnapshot(s.db); err != nil {
		logger.FromContext(ctx).Error("Failed to store snapshot", "owner", owner, "error", err)
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}
	logger.FromContext(ctx).Info("Snapshot stored", "id", snap.ID, "owner", owner, "kind", snap.Kind, "year", snap.TaxYear)
	return snap, nil
}

// LoadSnapshot re-validates and recomputes the stored input; a stored result is never
// returned as is.
func (s *taxServiceImpl) LoadSnapshot(ctx context.Context, owner, id string) (*SnapshotView, error) {
	if s.db == nil {
		return nil, ErrSnapshotStoreUnavailable
	}
	snap, err := model.GetSnapshotByID(s.db, id, owner)
	if err != nil {
		return nil, err
	}

	var req SnapshotRequest
	if err := json.Unmarshal([]byte(snap.InputJSON), &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	fed, jr, err := s.compute(ctx, req)
	if err != nil {
		return nil, err
	}
	etag, err := utils.GenerateETag(resultOf(fed, jr))
	if err != nil {
		return nil, err
	}

	view := &SnapshotView{Snapshot: *snap, Request: req, Federal: fed, Jurisdiction: jr, Stale: etag != snap.ETag}
	if view.Stale {
		logger.FromContext(ctx).Info("Snapshot result changed on recompute", "id", id, "year", snap.TaxYear)
	}
	return view, nil
}

func (s *taxServiceImpl) ListSnapshots(ctx context.Context, owner string) ([]model.Snapshot, error) {
	if s.db == nil {
		return nil, ErrSnapshotStoreUnavailable
	}
	list, err := model.ListSnapshotsByOwner(s.db, owner, maxListedSnapshots)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.FromContext(ctx).Error("Failed to list snapshots", "owner", owner, "error", err)
		return nil, err
	}
	return list, nil
}

func (s *taxServiceImpl) DeleteSnapshot(ctx context.Context, owner, id string) error {
	if s.db == nil {
		return ErrSnapshotStoreUnavailable
	}
	if err := model.DeleteSnapshot(s.db, id, owner); err != nil {
		if !errors.Is(err, model.ErrSnapshotNotFound) {
			logger.FromContext(ctx).Error("Failed to delete snapshot", "id", id, "owner", owner, "error", err)
		}
		return err
	}
	logger.FromContext(ctx).Info("Snapshot deleted", "id", id, "owner", owner)
	return nil
}
