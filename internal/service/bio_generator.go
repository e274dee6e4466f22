package service

import (
	"context"

	"crimson-crm-be/internal/dto"
	"crimson-crm-be/pkg/biostate"
)

type localBioGenerator struct {
	bios IBioService
}

// NewLocalBioGenerator lets profile sessions call the bio service in-process.
func NewLocalBioGenerator(bios IBioService) biostate.BioGenerator {
	return &localBioGenerator{bios: bios}
}

func (g *localBioGenerator) GenerateBio(ctx context.Context, donor biostate.Donor) (*biostate.GeneratedBio, error) {
	res, err := g.bios.GenerateBio(ctx, &dto.BioRequest{
		Name:       donor.Name,
		Occupation: donor.Occupation,
		Employer:   donor.Employer,
		Location:   donor.Location,
		Email:      donor.Email,
		Industry:   donor.Industry,
	})
	if err != nil {
		return nil, err
	}

	citations := make([]biostate.Citation, 0, len(res.Citations))
	for _, c := range res.Citations {
		citations = append(citations, biostate.Citation{Title: c.Title, URL: c.URL})
	}
	return &biostate.GeneratedBio{
		Headlines: res.Headlines,
		Citations: citations,
		Model:     res.Model,
	}, nil
}
