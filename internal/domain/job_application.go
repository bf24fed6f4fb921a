package domain

import "time"

type JobApplication struct {
	ID                string    `json:"id"`
	PhoneNumber       string    `json:"phone_number"`
	UserName          string    `json:"user_name"`
	PreviousJob       string    `json:"previous_job"`
	YearsOfExperience string    `json:"years_of_experience"`
	JobVacancy        string    `json:"job_vacancy"`
	CreatedAt         time.Time `json:"created_at"`
}
