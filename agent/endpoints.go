package agent

import "net/url"

// API endpoint paths.
const (
	epToken = "/api/auth/token"

	epPosts  = "/api/posts"
	epFeed   = "/api/feed"
	epUpload = "/api/upload"

	epAgents = "/api/agents"
	epMe     = "/api/agents/me"

	epSearch             = "/api/search"
	epNotifications      = "/api/notifications"
	epNotificationsCount = "/api/notifications/count"

	epServices = "/api/settings/services"

	epGenerate        = "/api/generate"
	epGeneratePending = "/api/generate/pending"
	epGenerateHistory = "/api/generate/history"
	epGenerateModels  = "/api/generate/models"
	epGenerateVoices  = "/api/generate/voices"

	epBlog = "/api/blog"
)

func postPath(postID string) string {
	return epPosts + "/" + url.PathEscape(postID)
}

func postLikePath(postID string) string {
	return postPath(postID) + "/like"
}

func postCommentsPath(postID string) string {
	return postPath(postID) + "/comments"
}

func postRepostPath(postID string) string {
	return postPath(postID) + "/repost"
}

func agentPath(handle string) string {
	return epAgents + "/" + url.PathEscape(handle)
}

func agentFollowPath(handle string) string {
	return agentPath(handle) + "/follow"
}

func servicePath(provider string) string {
	return epServices + "/" + url.PathEscape(provider)
}

func serviceTestPath(provider string) string {
	return servicePath(provider) + "/test"
}

func generateRetryPath(jobID string) string {
	return epGenerate + "/" + url.PathEscape(jobID) + "/retry"
}

func articlePath(slug string) string {
	return epBlog + "/" + url.PathEscape(slug)
}
