package server

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	"github.com/touslux/catalog-api/auth"
)

// JSONErrorHandler renders any controller error as a JSON body with the
// status carried by the rich error. Unexpected errors become a generic 500;
// their detail goes to the log, never to the client.
func JSONErrorHandler(logger auth.Logger) router.ErrorHandler {
	if logger == nil {
		logger = auth.DefaultLogger()
	}

	return func(ctx router.Context, err error) error {
		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryInternal, "unexpected server error").
				WithCode(errors.CodeInternal)
		}

		if richErr.Code == 0 {
			richErr.Code = router.StatusInternalServerError
		}

		if richErr.Code >= router.StatusInternalServerError {
			logger.Error("request failed: %s", err)
			if len(richErr.Metadata) > 0 {
				logger.Debug("error metadata: %s", print.MaybePrettyJSON(richErr.Metadata))
			}
		}

		body := map[string]any{
			"error": richErr.Message,
		}
		if richErr.TextCode != "" {
			body["code"] = richErr.TextCode
		}

		return ctx.JSON(richErr.Code, body)
	}
}
