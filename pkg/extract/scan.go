package extract

// Scan applies Extract to every line in order and keeps every match.
// Lines that do not parse are skipped.
func Scan(prefix string, lines []string, opts Options) []Call {
	calls := make([]Call, 0, len(lines)/4)
	for _, line := range lines {
		if call, ok := Extract(prefix, line, opts); ok {
			calls = append(calls, call)
		}
	}
	return calls
}
