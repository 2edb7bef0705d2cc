package plan

import "fmt"

// ScanError reports that the scan root or one of its directories could not be listed.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("cannot list %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// NameError reports an entry whose name cannot be turned into a target name.
type NameError struct {
	Path   string
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("cannot rename %s: %s", e.Path, e.Reason)
}
