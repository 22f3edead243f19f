package panels

import (
	"strconv"
	"strings"

	"storefront/internal/domain"
)

type AffiliateChange struct {
	AffiliateURL   *string  `json:"affiliate_url"`
	Network        *string  `json:"network"`
	CommissionRate *float64 `json:"commission_rate"`
	Disclosure     *string  `json:"disclosure"`
}

type ExternalLinkChange struct {
	DestinationURL *string `json:"destination_url"`
	ButtonText     *string `json:"button_text"`
	OpenInNewTab   *bool   `json:"open_in_new_tab"`
}

func init() {
	register(&panel[domain.AffiliateDetails, AffiliateChange]{
		typ: domain.TypeAffiliate,
		merge: func(d domain.AffiliateDetails, c AffiliateChange) (domain.AffiliateDetails, error) {
			if err := setURL("affiliate_url", &d.AffiliateURL, c.AffiliateURL); err != nil {
				return d, err
			}
			setText(&d.Network, c.Network)
			if c.CommissionRate != nil {
				d.CommissionRate = min(max(*c.CommissionRate, 0), 100)
			}
			set(&d.Disclosure, c.Disclosure)
			return d, nil
		},
		preview: func(d domain.AffiliateDetails) []PreviewLine {
			return []PreviewLine{
				line("Link", orDash(d.AffiliateURL)),
				line("Network", orDash(d.Network)),
				line("Commission", strconv.FormatFloat(d.CommissionRate, 'f', -1, 64)+"%"),
				line("Disclosure", orDash(d.Disclosure)),
			}
		},
	})

	register(&panel[domain.ExternalLinkDetails, ExternalLinkChange]{
		typ: domain.TypeExternalLink,
		merge: func(d domain.ExternalLinkDetails, c ExternalLinkChange) (domain.ExternalLinkDetails, error) {
			if err := setURL("destination_url", &d.DestinationURL, c.DestinationURL); err != nil {
				return d, err
			}
			setText(&d.ButtonText, c.ButtonText)
			set(&d.OpenInNewTab, c.OpenInNewTab)
			return d, nil
		},
		preview: func(d domain.ExternalLinkDetails) []PreviewLine {
			button := d.ButtonText
			if strings.TrimSpace(button) == "" {
				button = "Visit"
			}
			return []PreviewLine{
				line("Destination", orDash(d.DestinationURL)),
				line("Button", button),
				line("New tab", yesNo(d.OpenInNewTab)),
			}
		},
	})
}
