package summary

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handler exposes the summary service over HTTP. Every response is 200;
// failures travel inside the JSON body so browser clients always get a
// parseable answer.
type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Home)
	e.GET("/:patientID", h.GetSummary)
}

// Home describes how to call the service.
func (h *Handler) Home(c echo.Context) error {
	return c.String(http.StatusOK, `Get CDS using path "/{patient_id}".`)
}

// GetSummary responds with the composite record for one patient.
func (h *Handler) GetSummary(c echo.Context) error {
	patientID := c.Param("patientID")
	if patientID == "favicon.ico" {
		return c.String(http.StatusOK, "No icon")
	}

	record, err := h.svc.BuildSummary(c.Request().Context(), patientID)
	if err != nil {
		h.logger.Error().Err(err).Str("patient_id", patientID).Msg("summary build failed")
		return c.JSON(http.StatusOK, map[string]string{"error": FatalError(patientID)})
	}
	return c.JSON(http.StatusOK, record)
}
