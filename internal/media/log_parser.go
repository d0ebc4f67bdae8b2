package media

import "strings"

// ParseLogLevel extracts the log level from ffmpeg output produced with
// `-loglevel level+...`: either "[level] message" or
// "[component @ 0x...] [level] message". The component tag is kept in the
// returned message, the level tag is stripped.
func ParseLogLevel(line string) (level, msg string) {
	if len(line) < 3 || line[0] != '[' {
		return "info", line
	}

	end := strings.Index(line, "] ")
	if end == -1 {
		return "info", line
	}

	if tag := line[1:end]; isLogLevel(tag) {
		return tag, line[end+2:]
	}

	component := line[:end+2]
	rest := line[end+2:]
	if len(rest) > 2 && rest[0] == '[' {
		if restEnd := strings.Index(rest, "] "); restEnd != -1 {
			if tag := rest[1:restEnd]; isLogLevel(tag) {
				return tag, component + rest[restEnd+2:]
			}
		}
	}

	return "info", line
}

func isLogLevel(s string) bool {
	switch s {
	case "quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug", "trace":
		return true
	}
	return false
}
