package store

import "github.com/arifsolmaz/exodigest/internal/turkish"

// SaveNews overwrites the localized news feed.
func (s *Store) SaveNews(articles []turkish.Article) error {
	return writeJSONAtomic(s.newsPath(), articles)
}

// LoadNews reads the localized news feed; a missing file yields none.
func (s *Store) LoadNews() ([]turkish.Article, error) {
	var articles []turkish.Article
	if _, err := readJSON(s.newsPath(), &articles); err != nil {
		return nil, err
	}
	return articles, nil
}
