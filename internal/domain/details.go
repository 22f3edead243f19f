package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Details is the type-specific field group of a product. Exactly one
// implementation exists per ProductType.
type Details interface {
	ProductType() ProductType
	clone() Details
}

// Dimensions of a physical item, in centimetres
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type DownloadDetails struct {
	FileURL       string `json:"file_url"`
	FileName      string `json:"file_name"`
	FileSize      int64  `json:"file_size"`
	DownloadLimit int    `json:"download_limit"`
}

type CourseDetails struct {
	Modules    []string `json:"modules"`
	Level      string   `json:"level"`
	Duration   string   `json:"duration"`
	AccessDays int      `json:"access_days"`
}

type MembershipDetails struct {
	BillingInterval string   `json:"billing_interval"`
	TrialDays       int      `json:"trial_days"`
	Benefits        []string `json:"benefits"`
}

type WebinarDetails struct {
	StartsAt        *time.Time `json:"starts_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Platform        string     `json:"platform"`
	MeetingURL      string     `json:"meeting_url"`
	MaxAttendees    int        `json:"max_attendees"`
	ReplayAvailable bool       `json:"replay_available"`
}

type ConsultationDetails struct {
	DurationMinutes int      `json:"duration_minutes"`
	BookingURL      string   `json:"booking_url"`
	Timezone        string   `json:"timezone"`
	Availability    []string `json:"availability"`
}

type AffiliateDetails struct {
	AffiliateURL   string  `json:"affiliate_url"`
	Network        string  `json:"network"`
	CommissionRate float64 `json:"commission_rate"`
	Disclosure     string  `json:"disclosure"`
}

type ExternalLinkDetails struct {
	DestinationURL string `json:"destination_url"`
	ButtonText     string `json:"button_text"`
	OpenInNewTab   bool   `json:"open_in_new_tab"`
}

type LeadMagnetDetails struct {
	FileURL       string `json:"file_url"`
	EmailListName string `json:"email_list_name"`
	OptInText     string `json:"opt_in_text"`
	RedirectURL   string `json:"redirect_url"`
}

// TicketOption is a purchasable ticket tier of a ticket product
type TicketOption struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Price             int64  `json:"price"`
	Quantity          int    `json:"quantity"`
	AvailableQuantity int    `json:"available_quantity"`
}

type TicketDetails struct {
	Venue          string         `json:"venue"`
	EventDate      string         `json:"event_date"`
	EventTime      string         `json:"event_time"`
	DeliveryMethod string         `json:"delivery_method"`
	Options        []TicketOption `json:"options"`
}

// CustomAttribute is a creator-defined variant axis of a physical product
type CustomAttribute struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// AttributeValue is one axis value of a generated variant
type AttributeValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant is one SKU-level combination of attribute values
type Variant struct {
	SKU        string           `json:"sku"`
	Attributes []AttributeValue `json:"attributes"`
	Price      int64            `json:"price"`
	Stock      int              `json:"stock"`
	Weight     float64          `json:"weight"`
	Dimensions Dimensions       `json:"dimensions"`
}

type PhysicalDetails struct {
	SKU                  string            `json:"sku"`
	Quantity             int               `json:"quantity"`
	Weight               float64           `json:"weight"`
	Dimensions           Dimensions        `json:"dimensions"`
	ShippingClass        string            `json:"shipping_class"`
	ShippingRestrictions []string          `json:"shipping_restrictions"`
	Sizes                []string          `json:"sizes"`
	Colors               []string          `json:"colors"`
	Materials            []string          `json:"materials"`
	CustomAttributes     []CustomAttribute `json:"custom_attributes"`
	Variants             []Variant         `json:"variants"`
	AffiliateEnabled     bool              `json:"affiliate_enabled"`
	AffiliateURL         string            `json:"affiliate_url"`
	AffiliateCommission  float64           `json:"affiliate_commission"`
	Tags                 []string          `json:"tags"`
	Notes                string            `json:"notes"`
}

type ServiceDetails struct {
	Deliverables   []string `json:"deliverables"`
	TurnaroundDays int      `json:"turnaround_days"`
	Revisions      int      `json:"revisions"`
	Requirements   string   `json:"requirements"`
}

type AMADetails struct {
	ResponseTimeHours int      `json:"response_time_hours"`
	TopicCategories   []string `json:"topic_categories"`
	AllowAttachments  bool     `json:"allow_attachments"`
	AttachmentTypes   []string `json:"attachment_types"`
	MaxQuestionLength int      `json:"max_question_length"`
}

func (DownloadDetails) ProductType() ProductType     { return TypeDownload }
func (CourseDetails) ProductType() ProductType       { return TypeCourse }
func (MembershipDetails) ProductType() ProductType   { return TypeMembership }
func (WebinarDetails) ProductType() ProductType      { return TypeWebinar }
func (ConsultationDetails) ProductType() ProductType { return TypeConsultation }
func (AffiliateDetails) ProductType() ProductType    { return TypeAffiliate }
func (ExternalLinkDetails) ProductType() ProductType { return TypeExternalLink }
func (LeadMagnetDetails) ProductType() ProductType   { return TypeLeadMagnet }
func (TicketDetails) ProductType() ProductType       { return TypeTicket }
func (PhysicalDetails) ProductType() ProductType     { return TypePhysical }
func (ServiceDetails) ProductType() ProductType      { return TypeService }
func (AMADetails) ProductType() ProductType          { return TypeAMA }

func (d DownloadDetails) clone() Details     { return d }
func (d AffiliateDetails) clone() Details    { return d }
func (d ExternalLinkDetails) clone() Details { return d }
func (d LeadMagnetDetails) clone() Details   { return d }

func (d CourseDetails) clone() Details {
	d.Modules = cloneStrings(d.Modules)
	return d
}

func (d MembershipDetails) clone() Details {
	d.Benefits = cloneStrings(d.Benefits)
	return d
}

func (d WebinarDetails) clone() Details {
	if d.StartsAt != nil {
		v := *d.StartsAt
		d.StartsAt = &v
	}
	return d
}

func (d ConsultationDetails) clone() Details {
	d.Availability = cloneStrings(d.Availability)
	return d
}

func (d TicketDetails) clone() Details {
	if d.Options != nil {
		d.Options = append([]TicketOption(nil), d.Options...)
	}
	return d
}

func (d PhysicalDetails) clone() Details {
	d.ShippingRestrictions = cloneStrings(d.ShippingRestrictions)
	d.Sizes = cloneStrings(d.Sizes)
	d.Colors = cloneStrings(d.Colors)
	d.Materials = cloneStrings(d.Materials)
	d.Tags = cloneStrings(d.Tags)
	if d.CustomAttributes != nil {
		attrs := make([]CustomAttribute, len(d.CustomAttributes))
		for i, a := range d.CustomAttributes {
			attrs[i] = CustomAttribute{Name: a.Name, Values: cloneStrings(a.Values)}
		}
		d.CustomAttributes = attrs
	}
	if d.Variants != nil {
		variants := make([]Variant, len(d.Variants))
		for i, v := range d.Variants {
			v.Attributes = append([]AttributeValue(nil), v.Attributes...)
			variants[i] = v
		}
		d.Variants = variants
	}
	return d
}

func (d ServiceDetails) clone() Details {
	d.Deliverables = cloneStrings(d.Deliverables)
	return d
}

func (d AMADetails) clone() Details {
	d.TopicCategories = cloneStrings(d.TopicCategories)
	d.AttachmentTypes = cloneStrings(d.AttachmentTypes)
	return d
}

// CloneDetails returns a deep copy of d, or nil
func CloneDetails(d Details) Details {
	if d == nil {
		return nil
	}
	return d.clone()
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// NewDetails returns the empty field group for t
func NewDetails(t ProductType) (Details, error) {
	switch t {
	case TypeDownload:
		return DownloadDetails{}, nil
	case TypeCourse:
		return CourseDetails{}, nil
	case TypeMembership:
		return MembershipDetails{BillingInterval: "monthly"}, nil
	case TypeWebinar:
		return WebinarDetails{}, nil
	case TypeConsultation:
		return ConsultationDetails{}, nil
	case TypeAffiliate:
		return AffiliateDetails{}, nil
	case TypeExternalLink:
		return ExternalLinkDetails{}, nil
	case TypeLeadMagnet:
		return LeadMagnetDetails{}, nil
	case TypeTicket:
		return TicketDetails{DeliveryMethod: "email"}, nil
	case TypePhysical:
		return PhysicalDetails{}, nil
	case TypeService:
		return ServiceDetails{}, nil
	case TypeAMA:
		return AMADetails{}, nil
	default:
		return nil, ErrUnknownProductType{Type: t}
	}
}

// DecodeDetails decodes raw into the field group selected by t. An empty
// type yields nil details; empty raw yields the empty group for t.
func DecodeDetails(t ProductType, raw []byte) (Details, error) {
	if t == "" {
		return nil, nil
	}

	details, err := NewDetails(t)
	if err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return details, nil
	}

	switch d := details.(type) {
	case DownloadDetails:
		err = json.Unmarshal(raw, &d)
		details = d
	case CourseDetails:
		err = json.Unmarshal(raw, &d)
		details = d
	case MembershipDetails:
		err = json.Unmarshal(raw, &d)
		details = d
	case WebinarDetails:
		err = json.Unmarshal(raw, &d)
		details = d
	case ConsultationDetails:
		err = json.Unmarshal(raw, &d)
		details = d
	case AffiliateDetails:
		err = json.Unmarshal(raw, &d)
		details = d
	case ExternalLinkDetails:
		err = json.Unmarshal(raw, &d)
		details = d
	case LeadMagnetDetails:
		err = json.Unmarshal(raw, &d)
		details = d
	case TicketDetails:
		err = json.Unmarshal(raw, &d)
		details = d
	case PhysicalDetails:
		err = json.Unmarshal(raw, &d)
		details = d
	case ServiceDetails:
		err = json.Unmarshal(raw, &d)
		details = d
	case AMADetails:
		err = json.Unmarshal(raw, &d)
		details = d
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s details: %w", t, err)
	}

	return details, nil
}
