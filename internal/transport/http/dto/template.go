package dto

import (
	"blogforge/internal/domain/models"

	"github.com/google/uuid"
)

type BlockDefinitionInput struct {
	Type     string `json:"type" validate:"required,oneof=text media embed"`
	Kind     string `json:"kind,omitempty"`
	Position int    `json:"position"`
}

type SaveTemplateRequest struct {
	ID          uuid.UUID              `json:"id,omitempty" swaggertype:"string" format:"uuid"`
	Name        string                 `json:"name" validate:"required,min=1,max=100"`
	Code        string                 `json:"code" validate:"required,min=1,max=50"`
	Description string                 `json:"description,omitempty"`
	Blocks      []BlockDefinitionInput `json:"blocks,omitempty"`
}

func (r SaveTemplateRequest) ToModel() models.BlockTemplate {
	template := models.BlockTemplate{
		ID:          r.ID,
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
	}

	if r.Blocks != nil {
		template.Blocks = make(models.BlockDefinitions, 0, len(r.Blocks))
		for _, b := range r.Blocks {
			template.Blocks = append(template.Blocks, models.BlockDefinition{
				Type:     models.BlockType(b.Type),
				Kind:     b.Kind,
				Position: b.Position,
			})
		}
	}

	return template
}
