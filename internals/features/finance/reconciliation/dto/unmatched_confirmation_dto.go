package dto

import (
	"errors"
	"strings"

	model "gabkutschola_backend/internals/features/finance/reconciliation/model"
)

/* =========================================================
   Review (PATCH)
========================================================= */

type ReviewUnmatchedConfirmationRequest struct {
	ReviewStatus   string  `json:"review_status" validate:"required"`
	ResolutionNote *string `json:"resolution_note"`
}

func (r *ReviewUnmatchedConfirmationRequest) Status() (model.ReviewStatus, error) {
	switch model.ReviewStatus(strings.ToLower(strings.TrimSpace(r.ReviewStatus))) {
	case model.ReviewStatusResolved:
		return model.ReviewStatusResolved, nil
	case model.ReviewStatusDismissed:
		return model.ReviewStatusDismissed, nil
	case model.ReviewStatusOpen:
		return model.ReviewStatusOpen, nil
	default:
		return "", errors.New("invalid review_status")
	}
}
