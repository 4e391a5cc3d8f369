// Package firewall is the client for the python-package-firewall policy
// service. It decides whether a package (and optionally a pinned version)
// may be installed. Every failure mode resolves to a Block verdict or an
// error-status BlockedInfo; nothing escapes the package as an error.
package firewall

import "encoding/json"

// Status is the verdict for a validated package.
type Status int

const (
	// Allow lets the package proceed to installation.
	Allow Status = iota
	// Block stops the installation.
	Block
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case Allow:
		return "allow"
	case Block:
		return "block"
	default:
		return "unknown"
	}
}

// Result is the outcome of validating a single package.
// A Block result always carries a non-empty Reason.
type Result struct {
	// Package is the normalized (lower-cased) package name.
	Package string
	Status  Status
	// Reason is a human-readable explanation, shown to the user on Block.
	Reason string
	// Blocked holds the policy detail record when the blocked-info
	// endpoint was consulted for this verdict, nil otherwise.
	Blocked *BlockedInfo
}

// BlockedStatus classifies a blocked-info lookup.
type BlockedStatus int

const (
	// BlockedStatusBlocked means the package has blocked versions.
	BlockedStatusBlocked BlockedStatus = iota
	// BlockedStatusAllowed means no versions are blocked.
	BlockedStatusAllowed
	// BlockedStatusUnknown means the service answered with an
	// unexpected status code.
	BlockedStatusUnknown
	// BlockedStatusError means the lookup failed (transport error,
	// timeout, or malformed response).
	BlockedStatusError
)

// String returns the string representation of the blocked status.
func (s BlockedStatus) String() string {
	switch s {
	case BlockedStatusBlocked:
		return "blocked"
	case BlockedStatusAllowed:
		return "allowed"
	case BlockedStatusUnknown:
		return "unknown"
	default:
		return "error"
	}
}

// BlockedInfo is the structured record behind a block, normalized from the
// policy service's blocked-info endpoint. It is the single source of truth
// for why a package is blocked.
type BlockedInfo struct {
	Package string
	Status  BlockedStatus
	// BlockedVersionCount is the number of blocked versions reported by
	// the service.
	BlockedVersionCount int
	// BlockedVersions lists the blocked version strings. It may contain
	// the wildcard token "*" meaning all versions.
	BlockedVersions []string
	// Reasons holds one entry per blocked version or condition.
	Reasons []string
	// Raw retains the service's response body for auditing.
	Raw json.RawMessage
	// Detail explains an Unknown or Error status.
	Detail string
}

// Wildcard is the token the policy service uses to block every version.
const Wildcard = "*"

// VersionBlocked reports whether the given version is covered by the
// blocked versions list, either exactly or via the wildcard token.
func (b BlockedInfo) VersionBlocked(version string) bool {
	for _, v := range b.BlockedVersions {
		if v == version || v == Wildcard {
			return true
		}
	}
	return false
}
