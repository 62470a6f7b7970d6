package studycontent

import "regexp"

// youtubeIDPattern matches the 11-character video identifier in the
// URL forms YouTube serves: watch URLs, short youtu.be links, /v/ and
// /embed/ paths.
var youtubeIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// ExtractVideoID returns the stable video identifier embedded in a
// video-hosting URL, or false if the URL does not match the expected
// pattern.
func ExtractVideoID(videoURL string) (string, bool) {
	m := youtubeIDPattern.FindStringSubmatch(videoURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}
