package images

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handler exposes the image store over HTTP. Missing images answer 200
// with an error body, matching what the summary service expects.
type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Home)
	e.GET("/:patientID/:imageID", h.GetImage)
}

func (h *Handler) Home(c echo.Context) error {
	return c.String(http.StatusOK, `Get images using the path "/{patient_id}/{image_id}".`)
}

func (h *Handler) GetImage(c echo.Context) error {
	patientID := c.Param("patientID")
	imageID := c.Param("imageID")

	image, err := h.svc.Lookup(patientID, imageID)
	if err != nil {
		h.logger.Warn().Err(err).Str("patient_id", patientID).Str("image_id", imageID).Msg("image lookup failed")
		msg := fmt.Sprintf("Patient with id '%s' or image with id '%s' does not exist.", patientID, imageID)
		return c.JSON(http.StatusOK, map[string]string{"error": msg})
	}
	return c.JSON(http.StatusOK, image)
}
