package model

// TimestampLayout is the ISO-8601 form used for Submission.CreatedAt.
// It is fixed-width in UTC so that lexical order matches time order.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Submission represents an accepted contact-form entry.
type Submission struct {
	ID          int64  `json:"id"`
	CreatedAt   string `json:"created_at"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ProjectType string `json:"project_type"`
	Message     string `json:"message"`
	IP          string `json:"ip,omitempty"`
	UserAgent   string `json:"user_agent,omitempty"`
}

// SubmissionListOptions carries pagination parameters for listing submissions.
type SubmissionListOptions struct {
	Limit  int
	Offset int
}

// SubmissionPage is one page of the admin listing.
type SubmissionPage struct {
	Rows     []*Submission `json:"rows"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}
