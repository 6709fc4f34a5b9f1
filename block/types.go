package block

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var (
	ErrAlreadyBlocked = errors.New("date is already blocked")
	ErrNotFound       = errors.New("block not found")
)

// Block closes one calendar date regardless of the weekly schedule.
type Block struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"-" validate:"required"`
	Reason    string    `json:"reason" validate:"max=500"`
	CreatedAt time.Time `json:"created_at"`
}

// DateString renders Date as YYYY-MM-DD.
func (b Block) DateString() string {
	return b.Date.Format(time.DateOnly)
}

func (b *Block) Validate() error {
	var verrs validator.ValidationErrors
	if err := validate.Struct(b); !errors.As(err, &verrs) {
		return err
	}
	if verrs[0].Field() == "Reason" {
		return errors.New("reason must be at most 500 characters")
	}
	return errors.New("date is required")
}
