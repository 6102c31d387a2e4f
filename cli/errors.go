package cli

// ErrorCode defines error types for CLI operations
type ErrorCode string

const (
	InvalidListen ErrorCode = "InvalidListen"
	EmptyDataset  ErrorCode = "EmptyDataset"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
