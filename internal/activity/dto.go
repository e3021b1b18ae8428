// AngelaMos | 2026
// dto.go

package activity

import (
	"time"
)

// ActivityRequest is the body of both create and update. Every field is
// written, as the admin form always sends the whole activity.
type ActivityRequest struct {
	Name        string   `json:"name"        validate:"required,min=1,max=200"`
	NbCredits   *int     `json:"nb_credits"  validate:"omitempty,min=0"`
	Type        string   `json:"type"`
	Price       *float64 `json:"price"       validate:"omitempty,min=0"`
	Description string   `json:"description" validate:"max=5000"`
}

type ActivityResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	NbCredits   *int      `json:"nb_credits"`
	Price       *float64  `json:"price"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToActivityResponse(a *Activity) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		Name:        a.Name,
		Type:        a.Type,
		NbCredits:   a.NbCredits,
		Price:       a.Price,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func ToActivityResponseList(activities []Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(activities))
	for i := range activities {
		out = append(out, ToActivityResponse(&activities[i]))
	}
	return out
}
