package panels

import (
	"strconv"

	"storefront/internal/domain"
)

type ServiceChange struct {
	TurnaroundDays *int    `json:"turnaround_days"`
	Revisions      *int    `json:"revisions"`
	Requirements   *string `json:"requirements"`
}

type AMAChange struct {
	ResponseTimeHours *int  `json:"response_time_hours"`
	AllowAttachments  *bool `json:"allow_attachments"`
	MaxQuestionLength *int  `json:"max_question_length"`
}

func init() {
	register(&panel[domain.ServiceDetails, ServiceChange]{
		typ: domain.TypeService,
		merge: func(d domain.ServiceDetails, c ServiceChange) (domain.ServiceDetails, error) {
			setFloor(&d.TurnaroundDays, c.TurnaroundDays)
			setFloor(&d.Revisions, c.Revisions)
			set(&d.Requirements, c.Requirements)
			return d, nil
		},
		lists: map[string]listField[domain.ServiceDetails]{
			"deliverables": {
				get: func(d domain.ServiceDetails) []string { return d.Deliverables },
				set: func(d *domain.ServiceDetails, v []string) { d.Deliverables = v },
			},
		},
		preview: func(d domain.ServiceDetails) []PreviewLine {
			return []PreviewLine{
				line("Deliverables", joinOrDash(d.Deliverables)),
				line("Turnaround", strconv.Itoa(d.TurnaroundDays)+" days"),
				line("Revisions", strconv.Itoa(d.Revisions)),
			}
		},
	})

	register(&panel[domain.AMADetails, AMAChange]{
		typ: domain.TypeAMA,
		merge: func(d domain.AMADetails, c AMAChange) (domain.AMADetails, error) {
			setFloor(&d.ResponseTimeHours, c.ResponseTimeHours)
			set(&d.AllowAttachments, c.AllowAttachments)
			setFloor(&d.MaxQuestionLength, c.MaxQuestionLength)
			return d, nil
		},
		lists: map[string]listField[domain.AMADetails]{
			"topic_categories": {
				get: func(d domain.AMADetails) []string { return d.TopicCategories },
				set: func(d *domain.AMADetails, v []string) { d.TopicCategories = v },
			},
			"attachment_types": {
				get: func(d domain.AMADetails) []string { return d.AttachmentTypes },
				set: func(d *domain.AMADetails, v []string) { d.AttachmentTypes = v },
			},
		},
		preview: func(d domain.AMADetails) []PreviewLine {
			lines := []PreviewLine{
				line("Response time", strconv.Itoa(d.ResponseTimeHours)+" hours"),
				line("Topics", joinOrDash(d.TopicCategories)),
				line("Attachments", yesNo(d.AllowAttachments)),
			}
			// attachment types stay stored while attachments are off
			if d.AllowAttachments {
				lines = append(lines, line("Attachment types", joinOrDash(d.AttachmentTypes)))
			}
			return lines
		},
	})
}
