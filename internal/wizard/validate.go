package wizard

import (
	"strings"

	"storefront/internal/domain"
	"storefront/internal/forms"
)

type check struct {
	failed  func(p *domain.Product) bool
	message string
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

var (
	needsName = check{
		failed:  func(p *domain.Product) bool { return blank(p.Name) },
		message: "Please enter a product name",
	}
	needsDescription = check{
		failed:  func(p *domain.Product) bool { return blank(p.Description) },
		message: "Please enter a product description",
	}
)

// detailChecks are the type-specific requirements of the standard details step
var detailChecks = map[domain.ProductType][]check{
	domain.TypeDownload: {
		{
			failed: func(p *domain.Product) bool {
				d, _ := p.Details.(domain.DownloadDetails)
				return blank(d.FileURL)
			},
			message: "Please upload a file for your download",
		},
	},
	domain.TypeExternalLink: {
		{
			failed: func(p *domain.Product) bool {
				d, _ := p.Details.(domain.ExternalLinkDetails)
				return blank(d.DestinationURL)
			},
			message: "Please enter a destination URL",
		},
	},
	domain.TypeLeadMagnet: {
		{
			failed: func(p *domain.Product) bool {
				d, _ := p.Details.(domain.LeadMagnetDetails)
				return blank(d.FileURL)
			},
			message: "Please upload a file for your lead magnet",
		},
		{
			failed: func(p *domain.Product) bool {
				d, _ := p.Details.(domain.LeadMagnetDetails)
				return blank(d.EmailListName)
			},
			message: "Please enter an email list name",
		},
	},
}

func physical(p *domain.Product) domain.PhysicalDetails {
	d, _ := p.Details.(domain.PhysicalDetails)
	return d
}

var physicalChecks = map[string][]check{
	"basic-info": {needsName, needsDescription},
	"inventory-pricing": {
		{
			failed:  func(p *domain.Product) bool { return blank(physical(p).SKU) },
			message: "Please enter a SKU",
		},
		{
			failed:  func(p *domain.Product) bool { return p.Price <= 0 },
			message: "Please enter a price greater than zero",
		},
	},
	"shipping": {
		{
			failed:  func(p *domain.Product) bool { return physical(p).Weight <= 0 },
			message: "Please enter the item weight",
		},
		{
			failed:  func(p *domain.Product) bool { return blank(physical(p).ShippingClass) },
			message: "Please choose a shipping class",
		},
	},
	"variations": {
		{
			failed: func(p *domain.Product) bool {
				d := physical(p)
				return len(attributeLists(d)) > 0 && len(d.Variants) == 0
			},
			message: "Please generate variants for the selected attributes",
		},
	},
	"affiliate-info": {
		{
			failed: func(p *domain.Product) bool {
				d := physical(p)
				return d.AffiliateEnabled && (d.AffiliateCommission <= 0 || d.AffiliateCommission > 100)
			},
			message: "Affiliate commission must be between 0 and 100 percent",
		},
		{
			failed: func(p *domain.Product) bool {
				d := physical(p)
				return d.AffiliateEnabled && (blank(d.AffiliateURL) || !forms.IsValidURL(d.AffiliateURL))
			},
			message: "Please enter a valid affiliate URL",
		},
	},
}

// Validate runs the required-field checklist of the given 1-based step
// against the draft. Steps outside the shape always pass.
func (s *Session) Validate(step int) error {
	steps := s.Steps()
	if step < 1 || step > len(steps) {
		return nil
	}
	name := steps[step-1]

	var checks []check
	switch s.Shape {
	case ShapeStandard:
		switch name {
		case "type":
			if !s.Draft.Type.Valid() {
				return &StepError{Step: name, Message: "Please select a product type"}
			}
		case "details":
			checks = append([]check{needsName, needsDescription}, detailChecks[s.Draft.Type]...)
		}
	case ShapePhysical:
		checks = physicalChecks[name]
	}

	for _, c := range checks {
		if c.failed(s.Draft) {
			return &StepError{Step: name, Message: c.message}
		}
	}
	return nil
}
