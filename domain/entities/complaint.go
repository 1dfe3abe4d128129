package entities

import (
	"errors"
	"fmt"
	"time"

	"github.com/manthansachdev12/Hackwave-pragyan/domain"
)

// Known municipal service categories. Any other non-empty string is accepted
// as a free-text category.
const (
	CategoryPropertyTax       = "property tax"
	CategoryWaterSupply       = "water supply"
	CategoryWasteManagement   = "waste management"
	CategoryStreetLight       = "street light"
	CategoryCertificates      = "certificates"
	CategoryRoadIssues        = "road issues"
	CategoryGarbageCollection = "garbage collection"
	CategoryDrainage          = "drainage"
)

// ComplaintStatus represents where a complaint is in its resolution workflow
type ComplaintStatus string

const (
	ComplaintStatusSubmitted  ComplaintStatus = "submitted"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
)

func (s ComplaintStatus) rank() int {
	switch s {
	case ComplaintStatusSubmitted:
		return 1
	case ComplaintStatusInProgress:
		return 2
	case ComplaintStatusResolved:
		return 3
	default:
		return 0
	}
}

// Valid reports whether s is one of the known statuses
func (s ComplaintStatus) Valid() bool {
	return s.rank() > 0
}

// CanAdvanceTo reports whether a complaint in status s may move to next.
// Statuses only ever move forward.
func (s ComplaintStatus) CanAdvanceTo(next ComplaintStatus) bool {
	return s.Valid() && next.Valid() && next.rank() > s.rank()
}

// Complaint is a citizen-reported municipal issue
type Complaint struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Status      ComplaintStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewComplaint creates a complaint in the submitted state
func NewComplaint(id, category, description, location string, now time.Time) *Complaint {
	return &Complaint{
		ID:          id,
		Category:    category,
		Description: description,
		Location:    location,
		Status:      ComplaintStatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Advance moves the complaint forward to next
func (c *Complaint) Advance(next ComplaintStatus, now time.Time) error {
	if !c.Status.CanAdvanceTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, c.Status, next)
	}
	c.Status = next
	c.UpdatedAt = now
	return nil
}

// Validate validates the complaint data
func (c *Complaint) Validate() error {
	if c.ID == "" {
		return errors.New("complaint id is required")
	}
	if c.Category == "" {
		return errors.New("category is required")
	}
	if !c.Status.Valid() {
		return fmt.Errorf("invalid complaint status %q", c.Status)
	}
	return nil
}
