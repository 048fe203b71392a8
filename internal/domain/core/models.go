package core

import "time"

type Employee struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Position  string     `json:"position"`
	StartDate *time.Time `json:"startDate,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Contract is the employment record appraisals hang off. A signed contract
// is what makes someone a reminder recipient.
type Contract struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employeeId"`
	JobTitle       string     `json:"jobTitle"`
	EmploymentType string     `json:"employmentType"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	Status         string     `json:"status"`
	SignedAt       *time.Time `json:"signedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type TeamMember struct {
	TeamID     string `json:"teamId"`
	ContractID string `json:"contractId"`
	IsManager  bool   `json:"isManager"`
}
