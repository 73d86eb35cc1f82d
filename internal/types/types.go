package types

// RequestKind identifies the origin of a generation request
type RequestKind string

const (
	// KindRole is a request built from a job role string
	KindRole RequestKind = "role"
	// KindResume is a request built from extracted resume text
	KindResume RequestKind = "resume"
)

// Status reports how completely a generation request was fulfilled
type Status string

const (
	StatusSuccess Status = "success" // full set of pairs returned
	StatusPartial Status = "partial" // some pairs returned, fewer than requested
	StatusFailure Status = "failure" // no usable pairs could be recovered
)

// GenerationRequest represents a single question generation request
type GenerationRequest struct {
	Kind       RequestKind `json:"kind"`
	Subject    string      `json:"subject"`              // job role, or display subject for resumes
	ResumeText string      `json:"resumeText,omitempty"` // extracted resume text, resume requests only
	Filename   string      `json:"filename,omitempty"`   // original upload name, resume requests only
}

// QAPair is a single interview question with its suggested answer
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QAResult is the parsed outcome of a generation request.
// TotalQuestions always equals len(Pairs).
type QAResult struct {
	Role           string   `json:"role,omitempty"`
	Filename       string   `json:"filename,omitempty"`
	Type           string   `json:"type"` // "role_based" or "resume_based"
	Pairs          []QAPair `json:"questions_and_answers"`
	TotalQuestions int      `json:"total_questions"`
	Status         Status   `json:"status"`
}

// TypeForKind maps a request kind to the response type label
func TypeForKind(kind RequestKind) string {
	if kind == KindResume {
		return "resume_based"
	}
	return "role_based"
}
