// AngelaMos | 2026
// entity.go

package activity

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Activity struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Type        string    `db:"type"`
	NbCredits   *int      `db:"nb_credits"`
	Price       *float64  `db:"price"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// CreditCost is the number of credits a credit-paid booking consumes.
func (a *Activity) CreditCost() int {
	if a.NbCredits == nil {
		return 0
	}
	return *a.NbCredits
}

func (a *Activity) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Name,
			validation.Required.Error("Le nom est requis"),
			validation.Length(1, 200),
		),
		validation.Field(&a.Type,
			validation.Required.Error(MsgTypeRequired),
		),
		validation.Field(&a.NbCredits,
			validation.Min(0).Error("Le nombre de crédits doit être positif"),
		),
		validation.Field(&a.Price,
			validation.Min(0.0).Error("Le prix doit être positif"),
		),
	)
}

const (
	MsgTypeRequired = "Le type est requis"
	MsgNotFound     = "Activité introuvable"
	MsgHasSessions  = "Impossible de supprimer une activité qui a des sessions associées"
)
