package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GenericResponse struct {
	Success bool        `json:"success"`
	Status  int         `json:"status"`
	Payload interface{} `json:"payload,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	ErrorType string `json:"errorType"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
}

const (
	ProblemStatusOpen   = "OPEN"
	ProblemStatusSolved = "SOLVED"
)

type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GithubID       string             `bson:"githubId" json:"githubId"`
	Username       string             `bson:"username" json:"username"`
	FullName       string             `bson:"fullName" json:"fullName"`
	Email          string             `bson:"email" json:"email"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`
	Points         int                `bson:"points" json:"points"`
	Badges         []string           `bson:"badges" json:"badges"`
	LikedProblems  []string           `bson:"likedProblems" json:"likedProblems"`
	SavedProblems  []string           `bson:"savedProblems" json:"savedProblems"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Problem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug        string             `bson:"slug" json:"slug"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	CodeSnippet string             `bson:"codeSnippet" json:"codeSnippet"`
	RepoLink    string             `bson:"repoLink" json:"repoLink"`
	Environment string             `bson:"environment" json:"environment"`
	Language    string             `bson:"language" json:"language"`
	Tags        []string           `bson:"tags" json:"tags"`
	Status      string             `bson:"status" json:"status"`
	PostedBy    string             `bson:"postedBy" json:"postedBy"`
	Likes       []string           `bson:"likes" json:"likes"`
	SavedBy     []string           `bson:"savedBy" json:"savedBy"`
	SolutionIDs []string           `bson:"solutionIds" json:"solutionIds"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Solution struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProblemID   string             `bson:"problemId" json:"problemId"`
	SubmittedBy string             `bson:"submittedBy" json:"submittedBy"`
	Content     string             `bson:"content" json:"content"`
	CodeSnippet string             `bson:"codeSnippet" json:"codeSnippet"`
	RepoLink    string             `bson:"repoLink" json:"repoLink"`
	Language    string             `bson:"language" json:"language"`
	IsAccepted  bool               `bson:"isAccepted" json:"isAccepted"`
	Upvotes     []string           `bson:"upvotes" json:"upvotes"`
	UpvoteCount int                `bson:"upvoteCount" json:"upvoteCount"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Certificate is immutable once issued; only IsActive may change.
type Certificate struct {
	ID               string    `bson:"_id" json:"id"`
	UserID           string    `bson:"userId" json:"userId"`
	UserName         string    `bson:"userName" json:"userName"`
	CourseTitle      string    `bson:"courseTitle" json:"courseTitle"`
	PrimarySkill     string    `bson:"primarySkill" json:"primarySkill"`
	AllSkills        []string  `bson:"allSkills" json:"allSkills"`
	VerificationURL  string    `bson:"verificationUrl" json:"verificationUrl"`
	GithubProfileURL string    `bson:"githubProfileUrl" json:"githubProfileUrl"`
	GeneratedAt      time.Time `bson:"generatedAt" json:"generatedAt"`
	IssuedDate       string    `bson:"issuedDate" json:"issuedDate"`
	IsActive         bool      `bson:"isActive" json:"isActive"`
}

// SolutionTally is the per-user aggregate of solutions created inside a
// leaderboard window.
type SolutionTally struct {
	UserID        string `bson:"_id" json:"userId"`
	SolutionCount int    `bson:"solutionCount" json:"solutionCount"`
	AcceptedCount int    `bson:"acceptedCount" json:"acceptedCount"`
}

type LeaderboardEntry struct {
	Rank           int      `json:"rank"`
	Username       string   `json:"username"`
	FullName       string   `json:"fullName"`
	ProfilePicture string   `json:"profilePicture"`
	Points         int      `json:"points"`
	Badges         []string `json:"badges"`
	Score          int      `json:"score"`
	SolutionCount  int      `json:"solutionCount"`
	AcceptedCount  int      `json:"acceptedCount"`
}
