package dataset

import (
	"context"

	"github.com/couchcryptid/elder-vulnerability-index/internal/domain"
)

// FileSVISource loads the SVI table from a local file on every refresh, so a
// replaced file is picked up without a restart.
type FileSVISource struct {
	Path string
}

func (s FileSVISource) LoadSVI(_ context.Context) ([]domain.SVIRow, error) {
	return LoadSVIFile(s.Path)
}

// FileDemographicsSource loads the demographics table from a local file on
// every refresh.
type FileDemographicsSource struct {
	Path string
}

func (s FileDemographicsSource) LoadDemographics(_ context.Context) ([]domain.DemographicRow, error) {
	return LoadDemographicsFile(s.Path)
}
