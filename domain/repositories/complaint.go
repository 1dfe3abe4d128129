package repositories

import (
	"context"

	"github.com/manthansachdev12/Hackwave-pragyan/domain/entities"
)

// ComplaintRepository is the session-scoped complaint registry. Every method
// returns copies; callers never share storage with the repository.
type ComplaintRepository interface {
	// Submit assigns a fresh ID and stores the complaint in the submitted state
	Submit(ctx context.Context, category, description, location string) (*entities.Complaint, error)
	Get(ctx context.Context, id string) (*entities.Complaint, error)
	// ListAll returns complaints in submission order
	ListAll(ctx context.Context) ([]*entities.Complaint, error)
	// Recent returns the last n complaints in submission order
	Recent(ctx context.Context, n int) ([]*entities.Complaint, error)
	AdvanceStatus(ctx context.Context, id string, next entities.ComplaintStatus) (*entities.Complaint, error)
	Count(ctx context.Context) (int, error)
}
