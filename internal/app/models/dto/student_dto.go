package dto

// CreateStudentRequest is the admin payload for enrolling a student
type CreateStudentRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Gender   string `json:"gender" binding:"omitempty,max=20"`
	Address  string `json:"address" binding:"omitempty,max=255"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Major    string `json:"major" binding:"omitempty,max=100"`
}

// UpdateStudentRequest is the admin partial update of a student
type UpdateStudentRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2,max=100"`
	Gender  *string `json:"gender" binding:"omitempty,max=20"`
	Address *string `json:"address" binding:"omitempty,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,phone"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Major   *string `json:"major" binding:"omitempty,max=100"`
}

// UpdateProfileRequest is the student self-service update; only these fields are writable
type UpdateProfileRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Major   *string `json:"major" binding:"omitempty,max=100"`
	Phone   *string `json:"phone" binding:"omitempty,phone"`
	Address *string `json:"address" binding:"omitempty,max=255"`
}

// ToStudentUpdate widens a profile update to the admin update shape
func (r UpdateProfileRequest) ToStudentUpdate() UpdateStudentRequest {
	return UpdateStudentRequest{
		Name:    r.Name,
		Email:   r.Email,
		Major:   r.Major,
		Phone:   r.Phone,
		Address: r.Address,
	}
}
