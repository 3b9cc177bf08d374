package medium

import "errors"

var (
	ErrFetch          = errors.New("fetch failed")
	ErrStatus         = errors.New("unexpected HTTP status")
	ErrTooLarge       = errors.New("response body too large")
	ErrNoArticle      = errors.New("could not find <article> element")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("page load failed")
)
