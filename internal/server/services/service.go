// Package services contains the account business logic: credentials,
// sessions, password reset, profiles and archival. Services talk to storage
// only through repomanager and never see HTTP types.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
)

// classified errors pass through inTx untouched.
var classified = []error{
	common.ErrStore,
	common.ErrConflict,
	common.ErrorNotFound,
	common.ErrValidation,
	common.ErrorUnauthorized,
	common.ErrorInternal,
	common.ErrInvalidOrExpiredToken,
}

// inTx runs fn in a transaction on db. Begin and commit failures are
// reported as common.ErrStore.
func inTx(ctx context.Context, db dbx.Transactor, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	err := db.WithTx(ctx, fn)
	if err == nil {
		return nil
	}
	for _, target := range classified {
		if errors.Is(err, target) {
			return err
		}
	}
	return common.StoreError(err)
}
