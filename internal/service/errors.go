package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/store"
	"github.com/singlesjukebox/jukebox-server/internal/validation"
)

// validate checks request structs. Messages use JSON field names.
var validate = validation.New()

// storeErr turns store sentinels into domain errors for a record of kind with id.
// Other errors are wrapped with op.
func storeErr(err error, op, kind, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s %s not found", kind, id)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(fmt.Sprintf("%s %s already exists", kind, id))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
