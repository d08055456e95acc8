package bot

import "strings"

// ParseCommand splits "/cmd[@bot] args..." into a lower-case command and its
// arguments rejoined with single spaces. It returns "" for text that is not a
// command, or a command addressed to a bot other than username.
func ParseCommand(text, username string) (cmd, args string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", ""
	}

	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		target := name[at+1:]
		name = name[:at]
		if username != "" && !strings.EqualFold(target, username) {
			return "", ""
		}
	}
	if name == "" {
		return "", ""
	}
	return strings.ToLower(name), strings.Join(fields[1:], " ")
}
