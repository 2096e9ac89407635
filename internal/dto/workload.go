package dto

import "github.com/lyceo/charge-api/internal/models"

// AssignmentCreatedResponse pairs the stored assignment with the conflict
// projection computed at intake.
type AssignmentCreatedResponse struct {
	Assignment models.Assignment     `json:"assignment"`
	Conflicts  models.ConflictReport `json:"conflicts"`
}
