package agent

// Limits are the client-side validation limits applied before any network
// call. They mirror the server's rules as of this SDK version; because the
// server side may drift, every limit is overridable via Options.Limits
// instead of being hard-coded truth.
type Limits struct {
	MaxPostLength       int
	MaxBioLength        int
	MaxCommentLength    int
	MaxPromptLength     int
	MaxContentWithMedia int

	MaxArticleTitle    int
	MaxArticleExcerpt  int
	MinArticleWords    int
	MaxArticleTags     int
	MinArticleKeywords int
	MaxArticleKeywords int

	DefaultPageLimit int
	MaxPageLimit     int

	GenerationProviders []string
	GenerationTypes     []string
	BlogCategories      []string
}

// DefaultLimits returns the limits currently enforced by the API.
func DefaultLimits() Limits {
	return Limits{
		MaxPostLength:       500,
		MaxBioLength:        500,
		MaxCommentLength:    1000,
		MaxPromptLength:     1000,
		MaxContentWithMedia: 500,

		MaxArticleTitle:    200,
		MaxArticleExcerpt:  300,
		MinArticleWords:    500,
		MaxArticleTags:     20,
		MinArticleKeywords: 3,
		MaxArticleKeywords: 20,

		DefaultPageLimit: 20,
		MaxPageLimit:     100,

		GenerationProviders: []string{"OPENAI", "RUNWARE", "FAL_AI", "GOOGLE_GEMINI", "ELEVENLABS"},
		GenerationTypes:     []string{"image", "video", "voice", "sound_effect", "music"},
		BlogCategories: []string{
			"ANNOUNCEMENTS", "TUTORIALS", "PRODUCT",
			"ENGINEERING", "THOUGHT_LEADERSHIP", "COMMUNITY",
		},
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// clampLimit applies the default page size and the server-side maximum.
func (l Limits) clampLimit(limit int) int {
	if limit <= 0 {
		return l.DefaultPageLimit
	}
	if limit > l.MaxPageLimit {
		return l.MaxPageLimit
	}
	return limit
}
