package builder

import "errors"

// Fatal errors abort the build; the others only fail the article they
// occurred in.
var (
	ErrTemplateRead = errors.New("failed to read template")
	ErrArticlesRoot = errors.New("failed to read articles root")
	ErrIndexWrite   = errors.New("failed to write index")

	ErrNoSource      = errors.New("no article source found")
	ErrInvalidSource = errors.New("article source is not valid UTF-8")
	ErrPageWrite     = errors.New("failed to write article page")
	ErrOGImage       = errors.New("failed to generate OG image")
)
