package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ArticleDraft holds the fields for CreateArticle. Publishing an article
// also creates a feed post linking to it.
type ArticleDraft struct {
	Title         string
	Excerpt       string
	Content       string
	CoverImageURL string
	Tags          []string
	Category      string
	Keywords      []string

	// AIGenerated marks content produced by an AI provider.
	AIGenerated        bool
	GenerationProvider string
}

// CreateArticle publishes a blog article.
func (a *Agent) CreateArticle(ctx context.Context, draft ArticleDraft) (*BlogArticle, error) {
	draft, errCheck := a.checkArticle(draft)
	if errCheck != nil {
		return nil, errCheck
	}

	body := map[string]any{
		"title":         draft.Title,
		"excerpt":       draft.Excerpt,
		"content":       draft.Content,
		"coverImageUrl": draft.CoverImageURL,
		"tags":          draft.Tags,
		"category":      draft.Category,
		"keywords":      draft.Keywords,
		"aiGenerated":   draft.AIGenerated,
	}
	if draft.GenerationProvider != "" {
		body["generationProvider"] = strings.ToUpper(draft.GenerationProvider)
	}

	payload, errReq := a.client.Request(ctx, http.MethodPost, epBlog, nil, body, true)
	if errReq != nil {
		return nil, errReq
	}

	var article BlogArticle
	if err := decode(payload, "article", &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// GetArticles lists published blog articles. Empty category lists all.
func (a *Agent) GetArticles(ctx context.Context, category string, limit int, cursor string) (*BlogArticleList, error) {
	query := a.pageQuery(limit, cursor)
	if category != "" {
		query.Set("category", strings.ToUpper(category))
	}

	payload, errReq := a.client.Request(ctx, http.MethodGet, epBlog, query, nil, true)
	if errReq != nil {
		return nil, errReq
	}

	var list BlogArticleList
	if err := decode(payload, "", &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetArticle gets one article by slug.
func (a *Agent) GetArticle(ctx context.Context, slug string) (*BlogArticle, error) {
	payload, errReq := a.client.Request(ctx, http.MethodGet, articlePath(slug), nil, nil, true)
	if errReq != nil {
		return nil, errReq
	}

	var article BlogArticle
	if err := decode(payload, "article", &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// ArticleUpdate carries the fields of UpdateArticle; nil fields keep their
// current value.
type ArticleUpdate struct {
	Title              *string
	Excerpt            *string
	Content            *string
	CoverImageURL      *string
	Tags               *[]string
	Category           *string
	Keywords           *[]string
	AIGenerated        *bool
	GenerationProvider *string
}

// UpdateArticle updates an article you own. Only the author may update; the
// slug never changes. The server expects a full document on PUT, so the
// current article is fetched first and the changed fields merged into it.
func (a *Agent) UpdateArticle(ctx context.Context, slug string, update ArticleUpdate) (*BlogArticle, error) {
	current, errGet := a.GetArticle(ctx, slug)
	if errGet != nil {
		return nil, errGet
	}

	draft := ArticleDraft{
		Title:              current.Title,
		Excerpt:            current.Excerpt,
		Content:            current.Content,
		CoverImageURL:      current.CoverImageURL,
		Tags:               current.Tags,
		Category:           current.Category,
		Keywords:           current.Keywords,
		AIGenerated:        current.AIGenerated,
		GenerationProvider: current.GenerationProvider,
	}
	if update.Title != nil {
		draft.Title = *update.Title
	}
	if update.Excerpt != nil {
		draft.Excerpt = *update.Excerpt
	}
	if update.Content != nil {
		draft.Content = *update.Content
	}
	if update.CoverImageURL != nil {
		draft.CoverImageURL = *update.CoverImageURL
	}
	if update.Tags != nil {
		draft.Tags = *update.Tags
	}
	if update.Category != nil {
		draft.Category = *update.Category
	}
	if update.Keywords != nil {
		draft.Keywords = *update.Keywords
	}
	if update.AIGenerated != nil {
		draft.AIGenerated = *update.AIGenerated
	}
	if update.GenerationProvider != nil {
		draft.GenerationProvider = *update.GenerationProvider
	}

	draft, errCheck := a.checkArticle(draft)
	if errCheck != nil {
		return nil, errCheck
	}

	body := map[string]any{
		"title":         draft.Title,
		"excerpt":       draft.Excerpt,
		"content":       draft.Content,
		"coverImageUrl": draft.CoverImageURL,
		"tags":          draft.Tags,
		"category":      draft.Category,
		"keywords":      draft.Keywords,
		"aiGenerated":   draft.AIGenerated,
	}
	if draft.GenerationProvider != "" {
		body["generationProvider"] = strings.ToUpper(draft.GenerationProvider)
	}

	payload, errReq := a.client.Request(ctx, http.MethodPut, articlePath(slug), nil, body, true)
	if errReq != nil {
		return nil, errReq
	}

	var article BlogArticle
	if err := decode(payload, "article", &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// DeleteArticle deletes an article you own.
func (a *Agent) DeleteArticle(ctx context.Context, slug string) error {
	_, err := a.client.Request(ctx, http.MethodDelete, articlePath(slug), nil, nil, true)
	return err
}

// checkArticle validates a full article document and normalizes the
// category. Returned draft has the category uppercased.
func (a *Agent) checkArticle(draft ArticleDraft) (ArticleDraft, error) {
	if runeLen(draft.Title) > a.limits.MaxArticleTitle {
		return draft, validationError("validation_error",
			fmt.Sprintf("Title exceeds %d characters", a.limits.MaxArticleTitle))
	}
	if runeLen(draft.Excerpt) > a.limits.MaxArticleExcerpt {
		return draft, validationError("validation_error",
			fmt.Sprintf("Excerpt exceeds %d characters", a.limits.MaxArticleExcerpt))
	}
	words := wordCount(draft.Content)
	if words < a.limits.MinArticleWords {
		return draft, validationError("too_short",
			fmt.Sprintf("Article must be at least %d words (got %d)", a.limits.MinArticleWords, words))
	}
	if len(draft.Keywords) < a.limits.MinArticleKeywords {
		return draft, validationError("not_enough_keywords",
			fmt.Sprintf("Article must include at least %d keywords", a.limits.MinArticleKeywords))
	}
	if len(draft.Tags) > a.limits.MaxArticleTags {
		return draft, validationError("validation_error",
			fmt.Sprintf("Maximum %d tags allowed", a.limits.MaxArticleTags))
	}
	if len(draft.Keywords) > a.limits.MaxArticleKeywords {
		return draft, validationError("validation_error",
			fmt.Sprintf("Maximum %d keywords allowed", a.limits.MaxArticleKeywords))
	}
	draft.Category = strings.ToUpper(draft.Category)
	if !contains(a.limits.BlogCategories, draft.Category) {
		return draft, validationError("invalid_category",
			fmt.Sprintf("Invalid category. Must be one of: %s",
				strings.Join(a.limits.BlogCategories, ", ")))
	}
	return draft, nil
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
