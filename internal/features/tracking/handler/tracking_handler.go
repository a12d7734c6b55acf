package handler

import (
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/domain"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/service"

	"github.com/gofiber/fiber/v2"
)

// TrackingHandler handles HTTP requests for package tracking.
type TrackingHandler struct {
	trackingService *service.TrackingService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(trackingService *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
	}
}

// PackageInfoRequest is the inbound batch of raw tracking pairs.
type PackageInfoRequest struct {
	TrackingInformation []domain.RequestPair `json:"tracking_information"`
}

// PackageInfoResponse is the success envelope.
type PackageInfoResponse struct {
	// Status is "success" on a fetched batch.
	Status string `json:"status"`
	// Message is a human-readable outcome description.
	Message string `json:"message"`
	// Data maps each tracking number to its result.
	Data map[string]domain.Result `json:"data"`
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Status is always "error".
	Status string `json:"status"`
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

func rayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// GetPackageInformation godoc
// @Summary Batch-track packages
// @Description Resolves tracking information for a batch of up to 40 (tracking, slug) pairs
// @Tags tracking
// @Accept json
// @Produce json
// @Param request body PackageInfoRequest true "Tracking pairs"
// @Success 200 {object} PackageInfoResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/package/information [get]
func (h *TrackingHandler) GetPackageInformation(c *fiber.Ctx) error {
	var req PackageInfoRequest
	if err := c.BodyParser(&req); err != nil || len(req.TrackingInformation) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Status:  "error",
			Message: "failed to fetch package: missing field(s): tracking_information",
			RayID:   rayID(c),
		})
	}

	for _, pair := range req.TrackingInformation {
		if pair.Tracking == "" {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Status:  "error",
				Message: "failed to fetch package: tracking not specified",
				RayID:   rayID(c),
			})
		}
	}

	results, err := h.trackingService.Track(c.UserContext(), req.TrackingInformation)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Status:  "error",
			Message: "failed to fetch packages: " + err.Error(),
			RayID:   rayID(c),
		})
	}

	if len(results) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Status:  "error",
			Message: "failed to fetch package: tracking information not found",
			RayID:   rayID(c),
		})
	}

	return c.JSON(PackageInfoResponse{
		Status:  "success",
		Message: "successfully fetched packages",
		Data:    results,
	})
}
