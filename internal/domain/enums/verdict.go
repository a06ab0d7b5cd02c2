package enums

import "strings"

type Verdict string

const (
	VerdictAccept Verdict = "accept"
	VerdictReject Verdict = "reject"
)

func ParseVerdict(raw string) (Verdict, bool) {
	switch Verdict(strings.ToLower(strings.TrimSpace(raw))) {
	case VerdictAccept:
		return VerdictAccept, true
	case VerdictReject:
		return VerdictReject, true
	default:
		return "", false
	}
}
