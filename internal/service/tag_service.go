package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"taskquest/internal/model"
	"taskquest/internal/repository"
)

// ErrTagCycle is returned when path resolution revisits a tag. Cycles cannot
// be created through EnsurePath, so hitting one is a data-integrity anomaly.
var ErrTagCycle = errors.New("tag hierarchy contains a cycle")

// TagService resolves and maintains the hierarchical tag forest.
type TagService struct {
	tags *repository.TagRepository
}

func NewTagService(tags *repository.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// ResolvePath walks parent links upward and returns the slash-delimited path
// from root to the given tag. A missing parent truncates the path to what
// could be resolved rather than failing.
func (s *TagService) ResolvePath(ctx context.Context, tagID uint) (string, error) {
	var parts []string
	visited := make(map[uint]bool)
	current := &tagID

	for current != nil {
		if visited[*current] {
			return "", ErrTagCycle
		}
		visited[*current] = true

		tag, err := s.tags.FindByID(ctx, *current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return "", fmt.Errorf("resolve tag %d: %w", *current, err)
		}

		parts = append([]string{tag.Name}, parts...)
		current = tag.ParentTagID
	}

	return strings.Join(parts, "/"), nil
}

// EnsurePath walks a slash-delimited path segment by segment, creating any
// missing tags, and returns the leaf tag's id. Not transactional: a partial
// failure leaves already-created ancestors in place, which re-running heals.
func (s *TagService) EnsurePath(ctx context.Context, path, category string) (uint, error) {
	var parentID *uint
	var leaf uint

	for _, part := range strings.Split(path, "/") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		tag, err := s.tags.FindChild(ctx, parentID, part, category)
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			tag = &model.Tag{Name: part, Category: category, ParentTagID: parentID}
			if err := s.tags.Create(ctx, tag); err != nil {
				return 0, err
			}
		default:
			return 0, fmt.Errorf("find tag %q: %w", part, err)
		}

		id := tag.ID
		parentID = &id
		leaf = id
	}

	if leaf == 0 {
		return 0, fmt.Errorf("%w: empty tag path", ErrValidation)
	}
	return leaf, nil
}

// HierarchyPrompt renders the tag forest as a flat per-category list of leaf
// paths, the shape the classifier prompt expects.
func HierarchyPrompt(tags []model.Tag) string {
	byID := make(map[uint]model.Tag, len(tags))
	hasChild := make(map[uint]bool)
	for _, t := range tags {
		byID[t.ID] = t
		if t.ParentTagID != nil {
			hasChild[*t.ParentTagID] = true
		}
	}

	paths := make(map[string][]string)
	for _, t := range tags {
		if hasChild[t.ID] {
			continue
		}
		parts := []string{t.Name}
		seen := map[uint]bool{t.ID: true}
		parent := t.ParentTagID
		for parent != nil && !seen[*parent] {
			seen[*parent] = true
			p, ok := byID[*parent]
			if !ok {
				break
			}
			parts = append([]string{p.Name}, parts...)
			parent = p.ParentTagID
		}
		paths[t.Category] = append(paths[t.Category], strings.Join(parts, "/"))
	}

	var b strings.Builder
	for _, cat := range model.Categories {
		list := paths[cat]
		if len(list) == 0 {
			continue
		}
		sort.Strings(list)
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(cat))
		for _, p := range list {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
