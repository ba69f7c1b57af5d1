package utils

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/kendall-kelly/chatwidget-api/generator"
)

var (
	// ArtifactDir is the directory generated widget files are served from.
	// Can be overridden for testing
	ArtifactDir = "public/iframes"

	artifactName = regexp.MustCompile(`^cw-[0-9a-f]{32}\.(html|js|css)$`)
)

// ArtifactError represents a rejected artifact request
type ArtifactError struct {
	Code    string
	Message string
}

func (e *ArtifactError) Error() string {
	return e.Message
}

// ValidateArtifactFilename accepts only names the generator produces and
// returns the artifact kind.
func ValidateArtifactFilename(filename string) (generator.Kind, error) {
	if filename == "" {
		return 0, &ArtifactError{Code: "INVALID_REQUEST", Message: "Filename is required"}
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return 0, &ArtifactError{Code: "INVALID_FILENAME", Message: "Invalid filename"}
	}
	m := artifactName.FindStringSubmatch(filename)
	if m == nil {
		return 0, &ArtifactError{Code: "INVALID_FILENAME", Message: "Invalid filename"}
	}
	for _, kind := range generator.Kinds {
		if kind.Extension() == m[1] {
			return kind, nil
		}
	}
	return 0, &ArtifactError{Code: "INVALID_FILE_TYPE", Message: "Unsupported file type"}
}

// AbsoluteURL joins a public path onto baseURL. With an empty base the path
// is returned unchanged.
func AbsoluteURL(baseURL, publicPath string) (string, error) {
	if publicPath == "" || baseURL == "" {
		return publicPath, nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	ref, err := url.Parse(publicPath)
	if err != nil {
		return "", fmt.Errorf("invalid public path: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// EmbedSnippet returns the iframe element a customer pastes into their site
func EmbedSnippet(src, title string) string {
	if src == "" {
		return ""
	}
	return fmt.Sprintf(`<iframe src="%s" title="%s" style="position:fixed;bottom:0;right:0;width:400px;height:600px;border:0;z-index:2147483000" loading="lazy"></iframe>`,
		html.EscapeString(src), html.EscapeString(title))
}
