package models

// ProposalRequest represents the request payload for generating a proposal
type ProposalRequest struct {
	JobDescription string `json:"jobDescription" validate:"required"`
	Skills         string `json:"skills,omitempty"`
	Experience     string `json:"experience,omitempty"`
}
