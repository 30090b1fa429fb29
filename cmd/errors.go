package cmd

import "fmt"

// NoTargetsError is returned when a check is invoked without any target.
type NoTargetsError struct {
	Plugin string
}

func (e *NoTargetsError) Error() string {
	return fmt.Sprintf("no targets given for %s (pass host[:port] arguments or --targets-file)", e.Plugin)
}

// VulnerableTargetsError signals --fail-on-vulnerable findings.
type VulnerableTargetsError struct {
	Vulnerable int
	Failed     int
}

func (e *VulnerableTargetsError) Error() string {
	switch {
	case e.Vulnerable > 0 && e.Failed > 0:
		return fmt.Sprintf("%d target(s) vulnerable, %d target(s) could not be checked", e.Vulnerable, e.Failed)
	case e.Failed > 0:
		return fmt.Sprintf("%d target(s) could not be checked", e.Failed)
	}
	return fmt.Sprintf("%d target(s) vulnerable", e.Vulnerable)
}
