package constants

// JobStatus is the canonical status for rows in the jobs audit table.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusOK     JobStatus = "OK"     // pipeline produced a typed result
	JobStatusFailed JobStatus = "FAILED" // document pipeline aborted with an error
)
