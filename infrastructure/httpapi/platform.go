package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rios0rios0/bulkclone/domain"
)

const (
	PlatformGitLab = "gitlab"
	PlatformGitHub = "github"

	gitlabBaseURL = "https://gitlab.com/api/v4"
	githubBaseURL = "https://api.github.com"
)

// Platform is the immutable per-invocation request configuration: where
// the API lives, how the token is presented, and how the next page of a
// list response is signalled. It is resolved once from a platform tag and
// threaded explicitly through every call.
type Platform struct {
	Tag     string
	BaseURL string

	headerName  string
	headerValue string
	nextPage    func(http.Header) string
}

// ResolvePlatform maps a platform tag and token to its configuration.
// It is a pure function of its inputs and fails on an empty token or an
// unknown tag.
func ResolvePlatform(tag, token string) (Platform, error) {
	if token == "" {
		return Platform{}, fmt.Errorf("%w for platform %q", domain.ErrEmptyToken, tag)
	}

	switch tag {
	case PlatformGitLab:
		return Platform{
			Tag:         tag,
			BaseURL:     gitlabBaseURL,
			headerName:  "PRIVATE-TOKEN",
			headerValue: token,
			// TODO follow the X-Next-Page header; GitLab listings are
			// currently read as a single page.
			nextPage: nil,
		}, nil
	case PlatformGitHub:
		return Platform{
			Tag:         tag,
			BaseURL:     githubBaseURL,
			headerName:  "Authorization",
			headerValue: "token " + token,
			nextPage:    nextLinkURL,
		}, nil
	default:
		return Platform{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedPlatform, tag)
	}
}

// Authorize sets the platform's auth header on the request.
func (p Platform) Authorize(req *http.Request) {
	req.Header.Set(p.headerName, p.headerValue)
}

// NextPage extracts the URL of the next result page from the response
// headers, or an empty string when pagination is exhausted.
func (p Platform) NextPage(header http.Header) string {
	if p.nextPage == nil {
		return ""
	}
	return p.nextPage(header)
}

// nextLinkURL extracts the rel="next" target from an RFC 5988 Link
// header, as used by the GitHub API.
func nextLinkURL(respHeader http.Header) string {
	for _, header := range respHeader.Values("Link") {
		for _, link := range strings.Split(header, ",") {
			parts := strings.Split(link, ";")
			if len(parts) < 2 {
				continue
			}

			target := strings.Trim(strings.TrimSpace(parts[0]), "<>")
			for _, param := range parts[1:] {
				if strings.TrimSpace(param) == `rel="next"` {
					return target
				}
			}
		}
	}
	return ""
}
