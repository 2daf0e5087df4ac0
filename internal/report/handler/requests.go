package handler

import (
	"strings"

	"civicpulse/internal/report/models"
	"civicpulse/pkg/domain"
	dErrors "civicpulse/pkg/domain-errors"
)

// SubmitReportRequest is the POST /reports body.
type SubmitReportRequest struct {
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	ImageName   string   `json:"image_name,omitempty"`
	ImageBase64 string   `json:"image_base64,omitempty"`
}

func (r *SubmitReportRequest) Normalize() {
	r.Description = strings.TrimSpace(r.Description)
	r.ImageName = strings.TrimSpace(r.ImageName)
	r.ImageBase64 = strings.TrimSpace(r.ImageBase64)
}

func (r *SubmitReportRequest) Validate() error {
	if len(r.Description) < models.MinDescriptionLength {
		return dErrors.New(dErrors.CodeValidation, "description must be at least 10 characters")
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return dErrors.New(dErrors.CodeValidation, "latitude and longitude must be provided together")
	}
	if r.Latitude != nil {
		if *r.Latitude < -90 || *r.Latitude > 90 {
			return dErrors.New(dErrors.CodeValidation, "latitude must be between -90 and 90")
		}
		if *r.Longitude < -180 || *r.Longitude > 180 {
			return dErrors.New(dErrors.CodeValidation, "longitude must be between -180 and 180")
		}
	}
	if r.ImageBase64 != "" && r.ImageName == "" {
		return dErrors.New(dErrors.CodeValidation, "image_name is required when an image is attached")
	}
	return nil
}

func (r *SubmitReportRequest) location() *models.Location {
	if r.Latitude == nil {
		return nil
	}
	return &models.Location{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

// ChangeStatusRequest is the PATCH /reports/{id}/status body.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

func (r *ChangeStatusRequest) Normalize() {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func (r *ChangeStatusRequest) Validate() error {
	_, err := domain.ParseStatus(r.Status)
	return err
}
