package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/manthansachdev12/Hackwave-pragyan/domain"
)

func TestNewComplaint(t *testing.T) {
	now := time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)
	complaint := NewComplaint("WS20231201-0001", CategoryWaterSupply, "No water for 2 days", "Sector 15", now)

	if complaint.Status != ComplaintStatusSubmitted {
		t.Errorf("Expected status %s, got %s", ComplaintStatusSubmitted, complaint.Status)
	}

	if !complaint.CreatedAt.Equal(now) || !complaint.UpdatedAt.Equal(now) {
		t.Error("Expected timestamps to be set to creation time")
	}

	if err := complaint.Validate(); err != nil {
		t.Errorf("Valid complaint should not have validation errors, got: %v", err)
	}
}

func TestComplaintStatus_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		from, to ComplaintStatus
		want     bool
	}{
		{ComplaintStatusSubmitted, ComplaintStatusInProgress, true},
		{ComplaintStatusSubmitted, ComplaintStatusResolved, true},
		{ComplaintStatusInProgress, ComplaintStatusResolved, true},
		{ComplaintStatusSubmitted, ComplaintStatusSubmitted, false},
		{ComplaintStatusResolved, ComplaintStatusInProgress, false},
		{ComplaintStatusInProgress, ComplaintStatusSubmitted, false},
		{ComplaintStatusSubmitted, ComplaintStatus("closed"), false},
	}

	for _, tt := range tests {
		if got := tt.from.CanAdvanceTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestComplaint_Advance(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	complaint := NewComplaint("RI20231201-0002", CategoryRoadIssues, "Pothole", "MG Road", created)

	later := created.Add(30 * time.Minute)
	if err := complaint.Advance(ComplaintStatusInProgress, later); err != nil {
		t.Fatalf("Expected advance to succeed, got: %v", err)
	}
	if complaint.Status != ComplaintStatusInProgress {
		t.Errorf("Expected status %s, got %s", ComplaintStatusInProgress, complaint.Status)
	}
	if !complaint.UpdatedAt.Equal(later) {
		t.Error("Expected UpdatedAt to move to the transition time")
	}
	if !complaint.CreatedAt.Equal(created) {
		t.Error("CreatedAt must never change")
	}

	err := complaint.Advance(ComplaintStatusSubmitted, later)
	if !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Errorf("Expected ErrInvalidStatusTransition, got %v", err)
	}
	if complaint.Status != ComplaintStatusInProgress {
		t.Error("Status must not change on a rejected transition")
	}
}

func TestComplaint_Validate(t *testing.T) {
	complaint := NewComplaint("", CategoryDrainage, "Blocked drain", "Ward 4", time.Now())
	if err := complaint.Validate(); err == nil {
		t.Error("Complaint without ID should have validation error")
	}

	complaint.ID = "DR20231201-0003"
	complaint.Category = ""
	if err := complaint.Validate(); err == nil {
		t.Error("Complaint without category should have validation error")
	}

	complaint.Category = CategoryDrainage
	complaint.Status = ComplaintStatus("unknown")
	if err := complaint.Validate(); err == nil {
		t.Error("Complaint with invalid status should have validation error")
	}
}
