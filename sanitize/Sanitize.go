/*
File Name:  Sanitize.go
Copyright:  2024 Hearthmesh Contributors

Input sanitization for values that cross a trust boundary into persisted
state or the wire (§4.7, §6). Adapted from the teacher's path/username
sanitizers: the same defensive trimming and length-capping, retargeted at
this module's actual untrusted inputs (a peer-supplied nickname, a
user-supplied file transfer name, a configured data directory) instead of
DHT file-transfer paths.
*/

package sanitize

import (
	"path"
	"strings"
	"unicode/utf8"
)

// MaxPathLength mirrors the Windows UNC path length ceiling, the most
// restrictive filesystem this module's data directory might sit on.
const MaxPathLength = 32767

// MaxNicknameLength bounds a sanitized nickname (§3.1 display constraints).
const MaxNicknameLength = 36

// Directory sanitizes a configured data-directory path (§6 "Persisted state
// layout"): forward slashes only, cleaned, no leading/trailing slash.
func Directory(directory string) string {
	directory = strings.ReplaceAll(directory, "\\", "/")
	directory = path.Clean(directory)
	directory = strings.Trim(directory, "/")

	if len(directory) > MaxPathLength {
		directory = directory[:MaxPathLength]
	}
	return directory
}

// FileName sanitizes a user-supplied file transfer name (§4.1 FilePacket
// FILE_NAME TLV) to a safe length; callers are responsible for the
// additional default-on-empty behavior defined in the codec itself.
func FileName(filename string) string {
	if len(filename) > MaxPathLength {
		filename = filename[:MaxPathLength]
	}
	return filename
}

// Nickname sanitizes a peer-supplied display nickname before it is stored,
// routed, or embedded in a wire payload: replaces input that is not valid
// UTF-8 with the sentinel "<invalid encoding>", otherwise trims, collapses
// newlines, and caps length.
func Nickname(input string) string {
	if !utf8.ValidString(input) {
		return "<invalid encoding>"
	}

	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\n", " ")
	input = strings.ReplaceAll(input, "\r", "")

	if len(input) > MaxNicknameLength {
		input = input[:MaxNicknameLength]
	}
	return input
}
