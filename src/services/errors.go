package services

import (
	"errors"

	"github.com/username/ustax/src/model"
)

var (
	ErrSnapshotStoreUnavailable = errors.New("snapshot store is not configured")
	ErrSnapshotNotFound         = model.ErrSnapshotNotFound
	ErrInvalidSnapshot          = errors.New("invalid snapshot request")
	ErrCorruptSnapshot          = errors.New("stored snapshot cannot be decoded")
)
