package media

var (
	NewProgressReader = newProgressReader
	PublicIDFromURL   = publicIDFromURL
)

const (
	ResourceImage = resourceImage
	ResourceRaw   = resourceRaw
)
