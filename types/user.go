package types

// User is the complaint requester
type User struct {
	BaseDocument `json:",inline"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

// Collegue is the staff member handling complaints and document requests.
// The spelling follows the upstream data model.
type Collegue struct {
	BaseDocument `json:",inline"`
	CollegueID   string `json:"collegue_id"`
	Email        string `json:"email"`
}

type CreateUserInput struct {
	UserID string `json:"user_id" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
}

type CreateCollegueInput struct {
	CollegueID string `json:"collegue_id" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
}
