package github

// User represents a GitHub account as returned by collection endpoints.
type User struct {
	Login     string `json:"login"`
	HTMLURL   string `json:"html_url"`
	AvatarURL string `json:"avatar_url"`
	Type      string `json:"type"` // "User", "Organization", or "Bot"
}

// Org represents an organization membership entry.
type Org struct {
	Login string `json:"login"`
}

// Repo represents a repository in a user's repository listing.
type Repo struct {
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	HTMLURL         string `json:"html_url"`
	Fork            bool   `json:"fork"`
	Language        string `json:"language"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	OpenIssuesCount int    `json:"open_issues_count"`
	Owner           User   `json:"owner"`
}

// ContributorStats holds one contributor's weekly commit activity for a
// repository, as returned by /repos/{owner}/{repo}/stats/contributors.
type ContributorStats struct {
	Author User       `json:"author"`
	Total  int        `json:"total"`
	Weeks  []WeekStat `json:"weeks"`
}

// WeekStat is one week of additions, deletions, and commits.
type WeekStat struct {
	Week      int64 `json:"w"`
	Additions int   `json:"a"`
	Deletions int   `json:"d"`
	Commits   int   `json:"c"`
}

// userSearchResponse is the envelope returned by /search/users.
type userSearchResponse struct {
	TotalCount int    `json:"total_count"`
	Items      []User `json:"items"`
}

// apiMessage is the error envelope GitHub returns on denied requests.
type apiMessage struct {
	Message string `json:"message"`
}
