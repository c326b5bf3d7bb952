package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/google/uuid"
)

func isUnauthorized(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized)
}

// addDetail decodes T and hands it to add for the current user.
func addDetail[T any](h *Handler, w http.ResponseWriter, r *http.Request, req *T,
	add func(ctx context.Context, userID uuid.UUID, in T) error) {

	if err := decodeJSON(r, req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := add(r.Context(), currentUser(r).ID, *req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

const backgroundTimeout = 30 * time.Second

// goBackground runs fn after the request has been answered. fn keeps the
// request's values but not its cancellation.
func (h *Handler) goBackground(ctx context.Context, fn func(ctx context.Context)) {
	h.background.Add(1)
	go func() {
		defer h.background.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until the background work started by handlers is done.
func (h *Handler) Wait() {
	h.background.Wait()
}
