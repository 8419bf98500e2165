package bot

const (
	maxMessageLength = 4096
	previewBodyRunes = 500
	maxListedPosts   = 10
	maxIdeas         = 10

	actionConfirm    = "confirm"
	actionRegenerate = "regenerate"
	actionDelete     = "delete"
	actionPublish    = "publish"
)
