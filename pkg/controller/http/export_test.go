package http

// Exported for testing
var (
	IssueSessionToken  = issueSessionToken
	VerifySessionToken = verifySessionToken
)
