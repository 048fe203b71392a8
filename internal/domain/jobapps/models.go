package jobapps

import "time"

type Posting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Open        bool      `json:"open"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Application struct {
	ID             string    `json:"id"`
	PostingID      string    `json:"postingId"`
	CandidateName  string    `json:"candidateName"`
	CandidateEmail string    `json:"candidateEmail"`
	Stage          Stage     `json:"stage"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
