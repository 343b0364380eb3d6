package utils

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"bookstore-api/internal/shared"
)

// NotFuture rejects a shared.Date (or *shared.Date) later than now.
func NotFuture(now time.Time, message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		var d shared.Date
		switch v := value.(type) {
		case *shared.Date:
			if v == nil {
				return nil
			}
			d = *v
		case shared.Date:
			d = v
		default:
			return nil
		}
		if !d.IsZero() && d.After(now) {
			return validation.NewError("validation_date_future", message)
		}
		return nil
	})
}

// UUIDString rejects a non-empty string (or *string) that is not a UUID.
func UUIDString(message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		var s string
		switch v := value.(type) {
		case *string:
			if v == nil {
				return nil
			}
			s = *v
		case string:
			s = v
		default:
			return nil
		}
		if s == "" {
			return nil
		}
		if _, err := uuid.Parse(s); err != nil {
			return validation.NewError("validation_uuid", message)
		}
		return nil
	})
}
