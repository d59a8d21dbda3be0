package http

import (
	"errors"

	"cleanviz/internal/analysis"
	"cleanviz/internal/charts"
	"cleanviz/internal/dataset"
	apierrors "cleanviz/internal/errors"
	"cleanviz/internal/services"
	"cleanviz/internal/session"
)

// mapServiceError converts workspace errors to API errors. Errors it does not
// recognise are returned unchanged and end up as 500s.
func mapServiceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrNotFound):
		return apierrors.ErrSessionNotFound
	case errors.Is(err, session.ErrStoreFull):
		return apierrors.ErrServiceUnavailable
	case errors.Is(err, dataset.ErrDuplicateColumn):
		return apierrors.DuplicateColumn(err)
	case errors.Is(err, dataset.ErrParse):
		return apierrors.ParseFailed(err)
	case errors.Is(err, dataset.ErrUnknownColumn):
		return apierrors.ErrValidation("renames", err.Error())
	case errors.Is(err, services.ErrUnknownColumn), errors.Is(err, services.ErrColumnNotNumeric):
		return apierrors.ErrValidation("column", err.Error())
	case errors.Is(err, charts.ErrUnknownKind):
		return apierrors.ErrValidation("kind", err.Error())
	case errors.Is(err, analysis.ErrInsufficientData):
		return apierrors.InsufficientData(err)
	case errors.Is(err, analysis.ErrMissingVolcanoColumns):
		return apierrors.MissingVolcanoColumns(err)
	case errors.Is(err, analysis.ErrNoValues),
		errors.Is(err, analysis.ErrNoNumericColumns),
		errors.Is(err, analysis.ErrNotNumeric),
		errors.Is(err, charts.ErrNoPoints):
		return apierrors.NoPlottableData(err)
	default:
		return err
	}
}
