package note

import "strings"

// Page is one page of a note query.
type Page struct {
	Notes      []Note `json:"notes"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}

// Matches reports whether the lowercased search term is part of the Note's title or tags.
func Matches(n Note, search string) bool {
	return strings.Contains(strings.ToLower(n.Title), search) ||
		strings.Contains(strings.ToLower(n.Tags), search)
}

// Query filters notes by search (case-insensitive, on title and tags) and returns the requested page.
// notes must already be in display order; it is never modified.
// page is 1-indexed and a page beyond range is empty. pageSize <= 0 returns every match on page 1.
func Query(notes []Note, search string, page, pageSize int) Page {
	search = strings.ToLower(strings.TrimSpace(search))

	matches := make([]Note, 0, len(notes))
	for _, n := range notes {
		if search == "" || Matches(n, search) {
			matches = append(matches, n)
		}
	}
	total := len(matches)

	if pageSize <= 0 {
		pageSize = total
	}
	res := Page{
		Notes:    []Note{},
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
	if pageSize == 0 {
		return res
	}
	res.TotalPages = (total + pageSize - 1) / pageSize

	if page < 1 || page > res.TotalPages {
		return res
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	res.Notes = matches[start:end]
	return res
}
