package config

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewStoryForTest creates a Story config for testing purposes
func NewStoryForTest(path string) *Story {
	return &Story{path: path}
}

// NewPublishForTest creates a Publish config for testing purposes
func NewPublishForTest(slackBotToken, slackChannel, notionAPIToken, notionParentPage, storageBucket string) *Publish {
	return &Publish{
		slackBotToken:    slackBotToken,
		slackChannel:     slackChannel,
		notionAPIToken:   notionAPIToken,
		notionParentPage: notionParentPage,
		storageBucket:    storageBucket,
	}
}
