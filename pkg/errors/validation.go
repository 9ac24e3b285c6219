package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// loginRegex matches valid GitHub usernames: alphanumeric segments
// optionally separated by single hyphens, no leading or trailing hyphen.
var loginRegex = regexp.MustCompile(`^[A-Za-z0-9]+(?:-[A-Za-z0-9]+)*$`)

// maxLoginLength is GitHub's username length limit.
const maxLoginLength = 39

// ValidateLogin validates a GitHub username before it is interpolated
// into request URLs.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 39 characters (GitHub's limit)
func ValidateLogin(login string) error {
	if login == "" {
		return New(ErrCodeInvalidLogin, "username cannot be empty")
	}

	if len(login) > maxLoginLength {
		return New(ErrCodeInvalidLogin, "username too long (max %d characters)", maxLoginLength)
	}

	for _, r := range login {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLogin, "username contains invalid control characters")
		}
	}

	if !loginRegex.MatchString(login) {
		return New(ErrCodeInvalidLogin, "invalid username: %q", login)
	}

	return nil
}

// repoNameRegex matches valid GitHub repository names.
var repoNameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateRepoName validates a repository name (the part after owner/).
// It rejects names that could be used for path traversal.
func ValidateRepoName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidRepo, "repository name cannot be empty")
	}

	if len(name) > 100 {
		return New(ErrCodeInvalidRepo, "repository name too long (max 100 characters)")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidRepo, "repository name cannot contain path traversal sequences (..)")
	}

	if !repoNameRegex.MatchString(name) {
		return New(ErrCodeInvalidRepo, "invalid repository name: %q", name)
	}

	return nil
}
