package panels

import (
	"strconv"

	"storefront/internal/domain"
)

type DownloadChange struct {
	FileURL       *string `json:"file_url"`
	FileName      *string `json:"file_name"`
	FileSize      *int64  `json:"file_size"`
	DownloadLimit *int    `json:"download_limit"`
}

type CourseChange struct {
	Level      *string `json:"level"`
	Duration   *string `json:"duration"`
	AccessDays *int    `json:"access_days"`
}

type MembershipChange struct {
	BillingInterval *string `json:"billing_interval"`
	TrialDays       *int    `json:"trial_days"`
}

type LeadMagnetChange struct {
	FileURL       *string `json:"file_url"`
	EmailListName *string `json:"email_list_name"`
	OptInText     *string `json:"opt_in_text"`
	RedirectURL   *string `json:"redirect_url"`
}

var billingIntervals = map[string]bool{"weekly": true, "monthly": true, "quarterly": true, "yearly": true}

func init() {
	register(&panel[domain.DownloadDetails, DownloadChange]{
		typ: domain.TypeDownload,
		merge: func(d domain.DownloadDetails, c DownloadChange) (domain.DownloadDetails, error) {
			if err := setURL("file_url", &d.FileURL, c.FileURL); err != nil {
				return d, err
			}
			setText(&d.FileName, c.FileName)
			if c.FileSize != nil {
				d.FileSize = max(*c.FileSize, 0)
			}
			setFloor(&d.DownloadLimit, c.DownloadLimit)
			return d, nil
		},
		preview: func(d domain.DownloadDetails) []PreviewLine {
			limit := "Unlimited"
			if d.DownloadLimit > 0 {
				limit = strconv.Itoa(d.DownloadLimit)
			}
			return []PreviewLine{
				line("File", orDash(d.FileName)),
				line("Download limit", limit),
			}
		},
	})

	register(&panel[domain.CourseDetails, CourseChange]{
		typ: domain.TypeCourse,
		merge: func(d domain.CourseDetails, c CourseChange) (domain.CourseDetails, error) {
			setText(&d.Level, c.Level)
			setText(&d.Duration, c.Duration)
			setFloor(&d.AccessDays, c.AccessDays)
			return d, nil
		},
		lists: map[string]listField[domain.CourseDetails]{
			"modules": {
				get: func(d domain.CourseDetails) []string { return d.Modules },
				set: func(d *domain.CourseDetails, v []string) { d.Modules = v },
			},
		},
		preview: func(d domain.CourseDetails) []PreviewLine {
			access := "Lifetime"
			if d.AccessDays > 0 {
				access = strconv.Itoa(d.AccessDays) + " days"
			}
			return []PreviewLine{
				line("Modules", strconv.Itoa(len(d.Modules))),
				line("Level", orDash(d.Level)),
				line("Duration", orDash(d.Duration)),
				line("Access", access),
			}
		},
	})

	register(&panel[domain.MembershipDetails, MembershipChange]{
		typ: domain.TypeMembership,
		merge: func(d domain.MembershipDetails, c MembershipChange) (domain.MembershipDetails, error) {
			if c.BillingInterval != nil {
				if !billingIntervals[*c.BillingInterval] {
					return d, &FieldError{Field: "billing_interval", Message: "must be weekly, monthly, quarterly or yearly"}
				}
				d.BillingInterval = *c.BillingInterval
			}
			setFloor(&d.TrialDays, c.TrialDays)
			return d, nil
		},
		lists: map[string]listField[domain.MembershipDetails]{
			"benefits": {
				get: func(d domain.MembershipDetails) []string { return d.Benefits },
				set: func(d *domain.MembershipDetails, v []string) { d.Benefits = v },
			},
		},
		preview: func(d domain.MembershipDetails) []PreviewLine {
			lines := []PreviewLine{
				line("Billing", orDash(d.BillingInterval)),
				line("Benefits", joinOrDash(d.Benefits)),
			}
			if d.TrialDays > 0 {
				lines = append(lines, line("Free trial", strconv.Itoa(d.TrialDays)+" days"))
			}
			return lines
		},
	})

	register(&panel[domain.LeadMagnetDetails, LeadMagnetChange]{
		typ: domain.TypeLeadMagnet,
		merge: func(d domain.LeadMagnetDetails, c LeadMagnetChange) (domain.LeadMagnetDetails, error) {
			if err := setURL("file_url", &d.FileURL, c.FileURL); err != nil {
				return d, err
			}
			if err := setURL("redirect_url", &d.RedirectURL, c.RedirectURL); err != nil {
				return d, err
			}
			setText(&d.EmailListName, c.EmailListName)
			set(&d.OptInText, c.OptInText)
			return d, nil
		},
		preview: func(d domain.LeadMagnetDetails) []PreviewLine {
			file := "Not uploaded"
			if d.FileURL != "" {
				file = "Uploaded"
			}
			return []PreviewLine{
				line("File", file),
				line("Email list", orDash(d.EmailListName)),
				line("Opt-in text", orDash(d.OptInText)),
				line("Redirect", orDash(d.RedirectURL)),
			}
		},
	})
}
