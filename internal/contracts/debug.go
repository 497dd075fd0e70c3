package contracts

import (
	"fmt"
	"time"
)

// MaxAutoFixAttempts bounds how often the debugger retries a fix
const MaxAutoFixAttempts = 3

// ErrorType classifies a captured error
type ErrorType string

const (
	ErrorRuntime          ErrorType = "Runtime"
	ErrorNetwork          ErrorType = "Network"
	ErrorMemory           ErrorType = "Memory"
	ErrorMemoryLeak       ErrorType = "Memory Leak"
	ErrorUI               ErrorType = "UI"
	ErrorData             ErrorType = "Data"
	ErrorValidation       ErrorType = "Validation"
	ErrorAPI              ErrorType = "API"
	ErrorParsing          ErrorType = "Parsing"
	ErrorAuthentication   ErrorType = "Authentication"
	ErrorPermission       ErrorType = "Permission"
	ErrorFile             ErrorType = "File"
	ErrorDatabase         ErrorType = "Database"
	ErrorConfiguration    ErrorType = "Configuration"
	ErrorPerformanceIssue ErrorType = "Performance Issue"
)

// DebugSeverity ranks an error
type DebugSeverity string

const (
	SeverityInfo     DebugSeverity = "Info"
	SeverityWarning  DebugSeverity = "Warning"
	SeverityError    DebugSeverity = "Error"
	SeverityCritical DebugSeverity = "Critical"
)

var severityPriority = map[DebugSeverity]int{
	SeverityInfo:     1,
	SeverityWarning:  2,
	SeverityError:    3,
	SeverityCritical: 4,
}

// Priority is 1 (info) through 4 (critical), 0 for unknown values
func (s DebugSeverity) Priority() int {
	return severityPriority[s]
}

// ErrorLog is one captured application error
type ErrorLog struct {
	ID              string            `json:"id"`
	Timestamp       time.Time         `json:"timestamp"`
	Type            ErrorType         `json:"type"`
	Severity        DebugSeverity     `json:"severity"`
	ErrorMessage    string            `json:"errorMessage"`
	StackTrace      string            `json:"stackTrace,omitempty"`
	FileName        string            `json:"fileName,omitempty"`
	LineNumber      int               `json:"lineNumber,omitempty"`
	FunctionName    string            `json:"functionName,omitempty"`
	ErrorDomain     string            `json:"errorDomain"`
	ErrorCode       int               `json:"errorCode"`
	Context         map[string]string `json:"context,omitempty"`
	IsFixed         bool              `json:"isFixed"`
	FixAppliedAt    *time.Time        `json:"fixAppliedAt,omitempty"`
	FixMethod       string            `json:"fixMethod,omitempty"`
	AutoFixAttempts int               `json:"autoFixAttempts"`
	DeviceInfo      string            `json:"deviceInfo"`
	OccurrenceCount int               `json:"occurrenceCount"`
}

// CanAutoFix is true while the error is open and has attempts left
func (e ErrorLog) CanAutoFix() bool {
	return e.AutoFixAttempts < MaxAutoFixAttempts && !e.IsFixed
}

// Location renders file:line when both are known
func (e ErrorLog) Location() string {
	switch {
	case e.FileName != "" && e.LineNumber > 0:
		return fmt.Sprintf("%s:%d", e.FileName, e.LineNumber)
	case e.FileName != "":
		return e.FileName
	default:
		return "Unknown Location"
	}
}

// StatusText is "Fixed" or "Active"
func (e ErrorLog) StatusText() string {
	if e.IsFixed {
		return "Fixed"
	}
	return "Active"
}

// IsRecent is true for errors captured within the last hour
func (e ErrorLog) IsRecent(now time.Time) bool {
	return now.Sub(e.Timestamp) < time.Hour
}

// SessionType is the kind of debug run
type SessionType string

const (
	SessionHealthCheck        SessionType = "Health Check"
	SessionEliteHealthCheck   SessionType = "Elite Health Check"
	SessionPredictiveAnalysis SessionType = "Predictive Analysis"
	SessionEmergencyFix       SessionType = "Emergency Fix"
)

// IsValid reports whether t is a known session type
func (t SessionType) IsValid() bool {
	switch t {
	case SessionHealthCheck, SessionEliteHealthCheck, SessionPredictiveAnalysis, SessionEmergencyFix:
		return true
	}
	return false
}

// SessionStatus is the state of a debug run
type SessionStatus string

const (
	SessionRunning            SessionStatus = "Running"
	SessionCompleted          SessionStatus = "Completed"
	SessionCompletedWithIssue SessionStatus = "Completed with Issues"
	SessionFailed             SessionStatus = "Failed"
)

// DebugSession is one run of the auto debugger
type DebugSession struct {
	ID          string        `json:"id"`
	Type        SessionType   `json:"type"`
	StartTime   time.Time     `json:"startTime"`
	EndTime     *time.Time    `json:"endTime,omitempty"`
	Status      SessionStatus `json:"status"`
	Findings    []string      `json:"findings"`
	ErrorsFixed int           `json:"errorsFixed"`
}

// Duration is measured up to EndTime, or up to now while running
func (s DebugSession) Duration(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return end.Sub(s.StartTime)
}

// FormattedDuration renders the duration as m:ss
func (s DebugSession) FormattedDuration(now time.Time) string {
	total := int(s.Duration(now).Seconds())
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
