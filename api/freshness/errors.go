package freshness

// ErrorCode classifies why a freshness tier produced no timestamp.
type ErrorCode string

const (
	// ErrAddressUnparsed means the base URL carries no repository coordinates
	ErrAddressUnparsed ErrorCode = "AddressUnparsed"
	// ErrCommitRequestFailed covers transport failures and timeouts against the commits API
	ErrCommitRequestFailed ErrorCode = "CommitRequestFailed"
	// ErrCommitStatus means the commits API answered with a non-2xx status
	ErrCommitStatus ErrorCode = "CommitStatus"
	// ErrCommitNotFound means no commit touches the file on the branch
	ErrCommitNotFound ErrorCode = "CommitNotFound"
	// ErrCommitDateInvalid means the commit has no usable committer or author date
	ErrCommitDateInvalid ErrorCode = "CommitDateInvalid"

	ErrProbeRequestFailed ErrorCode = "ProbeRequestFailed"
	ErrProbeStatus        ErrorCode = "ProbeStatus"
	ErrProbeHeaderMissing ErrorCode = "ProbeHeaderMissing"
	ErrProbeDateInvalid   ErrorCode = "ProbeDateInvalid"

	ErrInvalidTimezone ErrorCode = "InvalidTimezone"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
