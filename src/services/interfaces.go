package services

import (
	"context"

	"github.com/username/ustax/src/jurisdictions"
	"github.com/username/ustax/src/model"
	"github.com/username/ustax/src/models"
)

// JurisdictionRequest carries the jurisdiction facts. When FederalInput is set the
// federal result is computed from it first and replaces Input.Federal.
type JurisdictionRequest struct {
	FederalInput *models.FederalInput        `json:"federal_input,omitempty"`
	Input        models.JurisdictionTaxInput `json:"input"`
}

// SnapshotRequest is what gets stored: the kind of computation and its input.
type SnapshotRequest struct {
	Kind         model.SnapshotKind   `json:"kind"`
	Year         int                  `json:"year"`
	Jurisdiction string               `json:"jurisdiction,omitempty"`
	Federal      *models.FederalInput `json:"federal,omitempty"`
	State        *JurisdictionRequest `json:"state,omitempty"`
}

// SnapshotView is a stored snapshot recomputed against the rules loaded now.
// Stale reports that the recomputed result differs from the stored one.
type SnapshotView struct {
	Snapshot     model.Snapshot             `json:"snapshot"`
	Request      SnapshotRequest            `json:"request"`
	Federal      *models.FederalResult      `json:"federal,omitempty"`
	Jurisdiction *models.JurisdictionResult `json:"jurisdiction,omitempty"`
	Stale        bool                       `json:"stale"`
}

// TaxService is the application surface over the federal pipeline and the jurisdiction
// registries. Returned results are shared with the cache and must not be modified.
type TaxService interface {
	Years() []int
	ListJurisdictions(year int) ([]jurisdictions.Config, error)
	ComputeFederal(ctx context.Context, year int, in models.FederalInput) (*models.FederalResult, error)
	ComputeJurisdiction(ctx context.Context, year int, code string, req JurisdictionRequest) (*models.JurisdictionResult, error)
	CompareJurisdictions(ctx context.Context, year int, codes []string, req JurisdictionRequest) ([]models.JurisdictionResult, error)

	SaveSnapshot(ctx context.Context, owner string, req SnapshotRequest) (*model.Snapshot, error)
	LoadSnapshot(ctx context.Context, owner, id string) (*SnapshotView, error)
	ListSnapshots(ctx context.Context, owner string) ([]model.Snapshot, error)
	DeleteSnapshot(ctx context.Context, owner, id string) error
}
