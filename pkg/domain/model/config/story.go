package config

const (
	// DefaultMaxScenes caps how many scenes one session accumulates
	DefaultMaxScenes = 3
	// DefaultRetrieveLimit is how many characters are retrieved per scene
	DefaultRetrieveLimit = 3
)

// StoryConfig holds the tunables of the scene-generation loop
type StoryConfig struct {
	MaxScenes     int
	RetrieveLimit int
}

// DefaultStoryConfig returns the configuration matching the original
// interactive defaults
func DefaultStoryConfig() *StoryConfig {
	return &StoryConfig{
		MaxScenes:     DefaultMaxScenes,
		RetrieveLimit: DefaultRetrieveLimit,
	}
}
