package model

import "time"

// GithubPrincipal is the identity handed over by the OAuth provider.
type GithubPrincipal struct {
	ID        string `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type ProblemRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CodeSnippet string   `json:"codeSnippet"`
	RepoLink    string   `json:"repoLink"`
	Environment string   `json:"environment"`
	Language    string   `json:"language"`
	Tags        []string `json:"tags"`
}

type SolutionRequest struct {
	Content     string `json:"content"`
	CodeSnippet string `json:"codeSnippet"`
	RepoLink    string `json:"repoLink"`
	Language    string `json:"language"`
}

type UserUpdateRequest struct {
	FullName *string `json:"fullName,omitempty"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// UserSummary is the public projection of a user: no ids, no email.
type UserSummary struct {
	Username       string   `json:"username"`
	FullName       string   `json:"fullName"`
	ProfilePicture string   `json:"profilePicture"`
	Points         int      `json:"points"`
	Badges         []string `json:"badges"`
}

type SolutionView struct {
	ID          string      `json:"id"`
	ProblemID   string      `json:"problemId"`
	SubmittedBy string      `json:"submittedBy"`
	User        UserSummary `json:"user"`
	Content     string      `json:"content"`
	CodeSnippet string      `json:"codeSnippet"`
	RepoLink    string      `json:"repoLink"`
	Language    string      `json:"language"`
	IsAccepted  bool        `json:"isAccepted"`
	UpvoteCount int         `json:"upvoteCount"`
	Upvotes     []string    `json:"upvotes"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type ProblemWithSolutions struct {
	Problem   Problem        `json:"problem"`
	PostedBy  UserSummary    `json:"postedBy"`
	Solutions []SolutionView `json:"solutions"`
}

type AchievementStats struct {
	TotalSolutions    int      `json:"totalSolutions"`
	AcceptedSolutions int      `json:"acceptedSolutions"`
	Points            int      `json:"points"`
	Badges            []string `json:"badges"`
	BadgeCount        int      `json:"badgeCount"`
	NextBadge         *string  `json:"nextBadge"`
	PointsToNextBadge int      `json:"pointsToNextBadge"`
}

type CertificateVerification struct {
	Valid         bool         `json:"valid"`
	CertificateID string       `json:"certificateId"`
	Message       string       `json:"message"`
	Certificate   *Certificate `json:"certificate,omitempty"`
}

func ToUserSummary(u *User) UserSummary {
	if u == nil {
		return UserSummary{Badges: []string{}}
	}
	badges := u.Badges
	if badges == nil {
		badges = []string{}
	}
	return UserSummary{
		Username:       u.Username,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
		Points:         u.Points,
		Badges:         badges,
	}
}
