package panels

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/forms"

	"github.com/google/uuid"
)

type WebinarChange struct {
	StartsAt        *time.Time `json:"starts_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	Platform        *string    `json:"platform"`
	MeetingURL      *string    `json:"meeting_url"`
	MaxAttendees    *int       `json:"max_attendees"`
	ReplayAvailable *bool      `json:"replay_available"`
}

type ConsultationChange struct {
	DurationMinutes *int    `json:"duration_minutes"`
	BookingURL      *string `json:"booking_url"`
	Timezone        *string `json:"timezone"`
}

// TicketOptionInput describes a ticket tier to add
type TicketOptionInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
}

type TicketChange struct {
	Venue          *string            `json:"venue"`
	EventDate      *string            `json:"event_date"`
	EventTime      *string            `json:"event_time"`
	DeliveryMethod *string            `json:"delivery_method"`
	AddOption      *TicketOptionInput `json:"add_option"`
	RemoveOptionID *string            `json:"remove_option_id"`
}

var deliveryMethods = map[string]bool{"email": true, "mobile": true, "will_call": true, "mail": true}

func init() {
	register(&panel[domain.WebinarDetails, WebinarChange]{
		typ: domain.TypeWebinar,
		merge: func(d domain.WebinarDetails, c WebinarChange) (domain.WebinarDetails, error) {
			if err := setURL("meeting_url", &d.MeetingURL, c.MeetingURL); err != nil {
				return d, err
			}
			if c.StartsAt != nil {
				v := c.StartsAt.UTC()
				d.StartsAt = &v
			}
			setFloor(&d.DurationMinutes, c.DurationMinutes)
			setText(&d.Platform, c.Platform)
			setFloor(&d.MaxAttendees, c.MaxAttendees)
			set(&d.ReplayAvailable, c.ReplayAvailable)
			return d, nil
		},
		preview: func(d domain.WebinarDetails) []PreviewLine {
			when := "Not scheduled"
			if d.StartsAt != nil {
				when = d.StartsAt.Format("2006-01-02 15:04 MST")
			}
			seats := "Unlimited"
			if d.MaxAttendees > 0 {
				seats = strconv.Itoa(d.MaxAttendees)
			}
			return []PreviewLine{
				line("Starts", when),
				line("Duration", strconv.Itoa(d.DurationMinutes)+" min"),
				line("Platform", orDash(d.Platform)),
				line("Seats", seats),
				line("Replay", yesNo(d.ReplayAvailable)),
			}
		},
	})

	register(&panel[domain.ConsultationDetails, ConsultationChange]{
		typ: domain.TypeConsultation,
		merge: func(d domain.ConsultationDetails, c ConsultationChange) (domain.ConsultationDetails, error) {
			if err := setURL("booking_url", &d.BookingURL, c.BookingURL); err != nil {
				return d, err
			}
			if c.Timezone != nil {
				tz := strings.TrimSpace(*c.Timezone)
				if tz != "" {
					if _, err := time.LoadLocation(tz); err != nil {
						return d, &FieldError{Field: "timezone", Message: "unknown time zone"}
					}
				}
				d.Timezone = tz
			}
			setFloor(&d.DurationMinutes, c.DurationMinutes)
			return d, nil
		},
		lists: map[string]listField[domain.ConsultationDetails]{
			"availability": {
				get: func(d domain.ConsultationDetails) []string { return d.Availability },
				set: func(d *domain.ConsultationDetails, v []string) { d.Availability = v },
			},
		},
		preview: func(d domain.ConsultationDetails) []PreviewLine {
			return []PreviewLine{
				line("Session length", strconv.Itoa(d.DurationMinutes)+" min"),
				line("Time zone", orDash(d.Timezone)),
				line("Availability", joinOrDash(d.Availability)),
				line("Booking link", orDash(d.BookingURL)),
			}
		},
	})

	register(&panel[domain.TicketDetails, TicketChange]{
		typ: domain.TypeTicket,
		merge: func(d domain.TicketDetails, c TicketChange) (domain.TicketDetails, error) {
			setText(&d.Venue, c.Venue)
			setText(&d.EventDate, c.EventDate)
			setText(&d.EventTime, c.EventTime)
			if c.DeliveryMethod != nil {
				if !deliveryMethods[*c.DeliveryMethod] {
					return d, &FieldError{Field: "delivery_method", Message: "unsupported delivery method"}
				}
				d.DeliveryMethod = *c.DeliveryMethod
			}
			if c.AddOption != nil {
				d.Options = addTicketOption(d.Options, *c.AddOption)
			}
			if c.RemoveOptionID != nil {
				d.Options = removeTicketOption(d.Options, *c.RemoveOptionID)
			}
			return d, nil
		},
		preview: func(d domain.TicketDetails) []PreviewLine {
			lines := []PreviewLine{
				line("Venue", orDash(d.Venue)),
				line("When", orDash(strings.TrimSpace(d.EventDate+" "+d.EventTime))),
				line("Delivery", orDash(d.DeliveryMethod)),
			}
			for _, o := range d.Options {
				lines = append(lines, line("Ticket: "+o.Name,
					fmt.Sprintf("$%s (%d available)", forms.FormatCents(o.Price), o.AvailableQuantity)))
			}
			return lines
		},
	})
}

// addTicketOption appends a new tier unless one with the same trimmed name exists
func addTicketOption(options []domain.TicketOption, in TicketOptionInput) []domain.TicketOption {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return options
	}
	for _, o := range options {
		if o.Name == name {
			return options
		}
	}

	quantity := max(in.Quantity, 0)
	out := make([]domain.TicketOption, 0, len(options)+1)
	out = append(out, options...)
	return append(out, domain.TicketOption{
		ID:                uuid.NewString(),
		Name:              name,
		Description:       strings.TrimSpace(in.Description),
		Price:             max(in.Price, 0),
		Quantity:          quantity,
		AvailableQuantity: quantity,
	})
}

func removeTicketOption(options []domain.TicketOption, id string) []domain.TicketOption {
	out := make([]domain.TicketOption, 0, len(options))
	for _, o := range options {
		if o.ID != id {
			out = append(out, o)
		}
	}
	if len(out) == len(options) {
		return options
	}
	return out
}
