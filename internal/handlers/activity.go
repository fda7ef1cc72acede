package handlers

import (
	"github.com/BruksfildServices01/meister-web/internal/dto"
	"github.com/BruksfildServices01/meister-web/internal/models"
)

func activityDTOs(logs []models.AuditLog) []dto.ActivityDTO {
	out := make([]dto.ActivityDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.ActivityDTO{
			ID:        l.ID,
			Actor:     l.Actor,
			Action:    l.Action,
			Entity:    l.Entity,
			EntityID:  l.EntityID,
			Metadata:  l.Metadata,
			CreatedAt: l.CreatedAt,
		})
	}
	return out
}
