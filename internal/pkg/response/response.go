package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/i18n"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
)

type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Renderer turns domain errors into localized JSON bodies.
type Renderer struct {
	tr     *i18n.Translator
	logger logger.ZapLogger
}

func NewRenderer(tr *i18n.Translator, log logger.ZapLogger) *Renderer {
	return &Renderer{tr: tr, logger: log}
}

func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindDuplicate:
		return http.StatusConflict
	case apperr.KindReferential:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (r *Renderer) Error(c echo.Context, err error) error {
	lang := c.Request().Header.Get("Accept-Language")
	e, ok := apperr.As(err)
	if !ok {
		r.logger.Error("unclassified error", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorBody{
			Error: r.tr.Localize(i18n.FallbackMessageID, lang),
			Code:  apperr.KindUnknown.String(),
		})
	}
	if e.Kind == apperr.KindTransport {
		r.logger.Error("store failure", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(StatusOf(e.Kind), ErrorBody{
		Error: r.tr.Localize(e.MessageID, lang),
		Code:  e.Kind.String(),
	})
}

// Warnings localizes non-fatal inconsistencies attached to a successful result.
func (r *Renderer) Warnings(c echo.Context, errs []error) []Warning {
	if len(errs) == 0 {
		return nil
	}
	lang := c.Request().Header.Get("Accept-Language")
	out := make([]Warning, 0, len(errs))
	for _, err := range errs {
		w := Warning{Code: apperr.KindInventoryInconsistency.String()}
		if e, ok := apperr.As(err); ok {
			w.Code = e.Kind.String()
			w.Message = r.tr.Localize(e.MessageID, lang)
		} else {
			w.Message = r.tr.Localize(i18n.FallbackMessageID, lang)
		}
		out = append(out, w)
	}
	return out
}
