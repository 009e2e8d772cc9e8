package ports

import "context"

// VideoUploader publishes a finished video to a hosting service.
type VideoUploader interface {
	// UploadVideo uploads the file at path and returns the id the hosting
	// service assigned to it.
	UploadVideo(ctx context.Context, path, title, description string) (string, error)
}

// VideoPublisher renders a project directory into a distributable package.
type VideoPublisher interface {
	// RenderAndPackage renders projectDir and returns the path of the
	// produced package.
	RenderAndPackage(ctx context.Context, projectDir string) (string, error)
}
