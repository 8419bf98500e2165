package usecase

// UseCases bundles the operations the bot and the HTTP API drive.
type UseCases struct {
	CreatePost        *CreatePost
	ConfirmPost       *ConfirmPost
	RegenerateContent *RegenerateContent
	PublishPost       *PublishPost
	DeletePost        *DeletePost
	ListPosts         *ListPosts
	PublishConfirmed  *PublishConfirmed
}

// New wires every use case over the same ports. researcher may be nil.
func New(repo PostRepository, generator ContentGenerator, publisher Publisher, researcher Researcher) *UseCases {
	publish := NewPublishPost(repo, publisher)
	return &UseCases{
		CreatePost:        NewCreatePost(repo, generator, researcher),
		ConfirmPost:       NewConfirmPost(repo),
		RegenerateContent: NewRegenerateContent(repo, generator),
		PublishPost:       publish,
		DeletePost:        NewDeletePost(repo),
		ListPosts:         NewListPosts(repo),
		PublishConfirmed:  NewPublishConfirmed(repo, publish),
	}
}
