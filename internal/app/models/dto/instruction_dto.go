package dto

// CreateInstructionRequest creates a chatbot instruction
type CreateInstructionRequest struct {
	Title            string `json:"title" binding:"required,max=200"`
	Content          string `json:"content" binding:"required"`
	SourceMaterialID *int64 `json:"source_material_id" binding:"omitempty,min=1"`
}

// UpdateInstructionRequest partially updates a chatbot instruction
type UpdateInstructionRequest struct {
	Title            *string `json:"title" binding:"omitempty,min=1,max=200"`
	Content          *string `json:"content" binding:"omitempty,min=1"`
	SourceMaterialID *int64  `json:"source_material_id" binding:"omitempty,min=1"`
}
