package service

import (
	"context"
	"fmt"
	"sort"

	"taskquest/internal/ledger"
	"taskquest/internal/model"
	"taskquest/internal/repository"
)

// SkillNode is one node in the read-only skill tree.
type SkillNode struct {
	Name           string       `json:"name"`
	Path           string       `json:"path,omitempty"`
	Points         int          `json:"points"`
	CompletedTasks int          `json:"completed_tasks"`
	Children       []*SkillNode `json:"children,omitempty"`
}

// SkillTreeService assembles the category→tag tree annotated with cumulative
// points and completion counts. It never mutates the ledger or tag tables.
type SkillTreeService struct {
	tags        *repository.TagRepository
	completions *repository.CompletionRepository
	store       ledger.Store
}

func NewSkillTreeService(tags *repository.TagRepository, completions *repository.CompletionRepository, store ledger.Store) *SkillTreeService {
	return &SkillTreeService{tags: tags, completions: completions, store: store}
}

func (s *SkillTreeService) Build(ctx context.Context) (*SkillNode, error) {
	tags, err := s.tags.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	led, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	counts, err := s.completions.CountByTag(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.completions.Count(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSkillTree(tags, led, counts, total), nil
}

// BuildSkillTree is a pure projection of the tag forest, a ledger snapshot
// and the per-tag direct completion counts. A completion counted for a tag
// is counted again for every ancestor; ancestor counts are therefore always
// at least their descendants'.
func BuildSkillTree(tags []model.Tag, led *ledger.Ledger, counts map[uint]int, totalCompleted int) *SkillNode {
	children := make(map[uint][]model.Tag)
	rootsByCategory := make(map[string][]model.Tag)
	for _, t := range tags {
		if t.ParentTagID == nil {
			rootsByCategory[t.Category] = append(rootsByCategory[t.Category], t)
		} else {
			children[*t.ParentTagID] = append(children[*t.ParentTagID], t)
		}
	}
	for id := range children {
		sort.Slice(children[id], func(i, j int) bool { return children[id][i].Name < children[id][j].Name })
	}

	var buildNode func(t model.Tag, prefix string) *SkillNode
	buildNode = func(t model.Tag, prefix string) *SkillNode {
		path := t.Name
		if prefix != "" {
			path = prefix + "/" + t.Name
		}
		node := &SkillNode{
			Name:           t.Name,
			Path:           path,
			Points:         led.TagPoints[path],
			CompletedTasks: counts[t.ID],
		}
		for _, child := range children[t.ID] {
			childNode := buildNode(child, path)
			node.CompletedTasks += childNode.CompletedTasks
			node.Children = append(node.Children, childNode)
		}
		return node
	}

	root := &SkillNode{
		Name:           "All Skills",
		Points:         led.Total,
		CompletedTasks: totalCompleted,
	}
	for _, cat := range model.Categories {
		catNode := &SkillNode{Name: cat, Points: led.Categories[cat]}
		roots := rootsByCategory[cat]
		sort.Slice(roots, func(i, j int) bool { return roots[i].Name < roots[j].Name })
		for _, t := range roots {
			node := buildNode(t, "")
			catNode.CompletedTasks += node.CompletedTasks
			catNode.Children = append(catNode.Children, node)
		}
		root.Children = append(root.Children, catNode)
	}
	return root
}
