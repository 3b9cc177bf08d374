// internal/builder/templates.go
package builder

import (
	"fmt"
	"os"
)

// Templates are the two page skeletons of a site. They are loaded once per
// run and only ever read.
type Templates struct {
	Article string
	Index   string
}

// LoadTemplates reads the article and index templates.
func LoadTemplates(articlePath, indexPath string) (Templates, error) {
	article, err := os.ReadFile(articlePath)
	if err != nil {
		return Templates{}, fmt.Errorf("%w %s: %w", ErrTemplateRead, articlePath, err)
	}
	index, err := os.ReadFile(indexPath)
	if err != nil {
		return Templates{}, fmt.Errorf("%w %s: %w", ErrTemplateRead, indexPath, err)
	}
	return Templates{Article: string(article), Index: string(index)}, nil
}
