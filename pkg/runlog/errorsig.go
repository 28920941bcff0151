package runlog

import "regexp"

// The processing system reports unresolvable resources in one of
// three LookupError shapes, differing in whether one or multiple node
// blocks appear and in the exact wording. All capture, in order: node
// block(s), target workflow, previous node block, missing resources.
var errorSignatures = []*regexp.Regexp{
	regexp.MustCompile(
		`LookupError: When trying to connect node block '([^']+)' ` +
			`to workflow '([^']+)' ` +
			`after node block '([^']+)':\s+\[!] ` +
			`C-PAC says: None of the listed resources are ` +
			`in the resource pool:\s+([^\n]*)`),
	regexp.MustCompile(
		`LookupError: When trying to connect node block '([^']+)' ` +
			`to workflow '([^']+)' ` +
			`after node block '([^']+)':\s+\[!] ` +
			`C-PAC says: None of the listed resources ` +
			`in the node block being connected exist ` +
			`in the resource pool\.\s+Resources:\s+([^\n]*)`),
	regexp.MustCompile(
		`LookupError: When trying to connect one of the node blocks \[([^]]+)] ` +
			`to workflow '([^']+)' ` +
			`after node block '([^']+)':\s+\[!] ` +
			`C-PAC says: None of the listed resources are ` +
			`in the resource pool:\s+([^\n]*)`),
}

// MatchErrorSignature scans the full log text for a known error
// signature. Signatures are tried in a fixed order and the first
// match wins. Returns nil when none match.
func MatchErrorSignature(text string) *ErrorInfo {
	for _, rx := range errorSignatures {
		m := rx.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		return &ErrorInfo{
			NodeBlock:         m[1],
			TargetWorkflow:    m[2],
			PreviousNodeBlock: m[3],
			MissingResources:  m[4],
		}
	}

	return nil
}
