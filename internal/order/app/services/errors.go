package services

import (
	"context"
	"errors"
	"fmt"

	"wildcats-food-express/internal/order/app/core"
)

// known are the errors the boundary maps to a specific status; anything else
// coming out of the store is reported as a storage failure.
var known = []error{
	core.ErrItemNotFound,
	core.ErrOutOfStock,
	core.ErrOrderNotFound,
	core.ErrValidation,
	context.Canceled,
	context.DeadlineExceeded,
}

func storageErr(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", core.ErrStorage, err)
}

func sessionFrom(ctx context.Context) (core.Session, error) {
	s, ok := core.SessionFrom(ctx)
	if !ok || s.UserID == "" {
		return core.Session{}, core.ErrUnauthorized
	}
	return s, nil
}
