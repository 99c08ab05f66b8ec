package scenegen

// Exported for testing
var (
	BuildScenePrompt   = buildScenePrompt
	BuildRewritePrompt = buildRewritePrompt
	FormatCharacters   = formatCharacters
)
