package server

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// youtubeHosts are the hosts treated as YouTube video links. Videos are never
// staged locally; the provider consumes the URL directly, so the console
// returns a reference instead of uploading.
var youtubeHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

// isYouTubeURL reports whether raw points at a YouTube video.
func isYouTubeURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return youtubeHosts[strings.ToLower(u.Host)]
}

// buildVideoInstruction is the system instruction attached when a generation
// request carries a video reference instead of cached content.
func buildVideoInstruction(videoURL string) string {
	return fmt.Sprintf(
		"You are answering questions about the video at %s. Base your answers only on the video content.",
		videoURL)
}

// stagingFilename derives a local filename for a staged URL. An explicit name
// wins; otherwise the last path segment is used, falling back to "staged" for
// URLs with no usable segment.
func stagingFilename(rawURL, explicit string) string {
	if explicit != "" {
		return path.Base(explicit) // strip any directory components
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "staged"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "staged"
	}
	return name
}
