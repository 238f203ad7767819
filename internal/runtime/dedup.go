package runtime

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/gucorpling/squeezer/pkg/domain"
)

// DedupOptions scopes the deduplication pass.
type DedupOptions struct {
	// TargetLayer restricts candidates to one layer. Empty means all constituents.
	TargetLayer string

	// Strict rejects groups whose bare and annotated counts differ instead of
	// collapsing the excess bare nodes onto the last annotated node.
	Strict bool
}

// DedupReport summarizes one deduplication pass.
type DedupReport struct {
	Groups              int `json:"groups"`
	Merged              int `json:"merged"`
	Deleted             int `json:"deleted"`
	RelationsRemoved    int `json:"relations_removed"`
	RelationsReanchored int `json:"relations_reanchored"`
}

// Fingerprint returns the sorted set of tokens a node dominates directly.
func Fingerprint(g *domain.Graph, id domain.NodeID) []domain.NodeID {
	seen := make(map[domain.NodeID]struct{})
	var out []domain.NodeID
	for _, r := range g.Outgoing(id) {
		if r.Kind != domain.Dominance {
			continue
		}
		t := g.Node(r.Target)
		if t == nil || t.Kind != domain.KindToken {
			continue
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t.ID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func fingerprintKey(fp []domain.NodeID) string {
	var sb strings.Builder
	for i, id := range fp {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(id)))
	}
	return sb.String()
}

// DuplicateGroups partitions eligible constituents by fingerprint. Only groups
// with two or more members are returned. Groups are ordered by their first
// member and members by insertion order.
func DuplicateGroups(g *domain.Graph, targetLayer string) [][]*domain.Node {
	var layer *domain.Layer
	if targetLayer != "" {
		layer = g.Layer(targetLayer)
		if layer == nil {
			return nil
		}
	}

	index := make(map[string]int)
	var groups [][]*domain.Node
	for _, n := range g.NodesOf(domain.KindConstituent) {
		if layer != nil && !layer.HasNode(n.ID) {
			continue
		}
		fp := Fingerprint(g, n.ID)
		if len(fp) == 0 {
			continue
		}
		key := fingerprintKey(fp)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], n)
	}

	out := groups[:0]
	for _, grp := range groups {
		if len(grp) >= 2 {
			out = append(out, grp)
		}
	}
	return out
}

// deletion marks a node for removal without a replacement.
const deletion domain.NodeID = -1

// planDedup validates every group and maps each redundant node to its
// replacement (or to deletion). Nothing is mutated.
func planDedup(groups [][]*domain.Node, strict bool) (map[domain.NodeID]domain.NodeID, error) {
	plan := make(map[domain.NodeID]domain.NodeID)
	for _, grp := range groups {
		var bare, annotated []*domain.Node
		for _, n := range grp {
			if n.CountAnnotations(domain.NamespaceScratch) == 0 {
				bare = append(bare, n)
			} else {
				annotated = append(annotated, n)
			}
		}

		if len(bare) < len(annotated) {
			return nil, fmt.Errorf("group of %s: %d bare vs %d annotated: %w", grp[0], len(bare), len(annotated), domain.ErrModelInvariant)
		}
		if strict && len(bare) != len(annotated) {
			return nil, fmt.Errorf("group of %s: %d bare vs %d annotated, expected one bare copy per annotated node: %w", grp[0], len(bare), len(annotated), domain.ErrModelInvariant)
		}

		for i, b := range bare {
			switch {
			case i < len(annotated):
				plan[b.ID] = annotated[i].ID
			case len(annotated) > 0:
				plan[b.ID] = annotated[len(annotated)-1].ID
			default:
				plan[b.ID] = deletion
			}
		}
	}
	return plan, nil
}

// Deduplicate merges constituents that duplicate another constituent's
// direct token children. All groups are validated before the graph is touched.
func Deduplicate(g *domain.Graph, opts DedupOptions, logger *slog.Logger) (DedupReport, error) {
	var report DedupReport

	groups := DuplicateGroups(g, opts.TargetLayer)
	report.Groups = len(groups)
	if len(groups) == 0 {
		return report, nil
	}

	plan, err := planDedup(groups, opts.Strict)
	if err != nil {
		return report, err
	}

	// Reverse insertion order: replacements are never removed before their duplicates.
	nodes := g.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		target, ok := plan[n.ID]
		if !ok {
			continue
		}

		if target == deletion {
			removed := len(g.Incoming(n.ID)) + len(g.Outgoing(n.ID))
			if err := g.RemoveNode(n.ID); err != nil {
				return report, err
			}
			report.Deleted++
			report.RelationsRemoved += removed
			logger.Debug("deleted unannotated duplicate", "node", n.String())
			continue
		}

		for _, r := range g.Incoming(n.ID) {
			if err := g.SetTarget(r.ID, target); err != nil {
				return report, err
			}
			report.RelationsReanchored++
		}
		for _, r := range g.Outgoing(n.ID) {
			if r.Kind == domain.Pointing {
				if err := g.SetSource(r.ID, target); err != nil {
					return report, err
				}
				report.RelationsReanchored++
				continue
			}
			if err := g.RemoveRelation(r.ID); err != nil {
				return report, err
			}
			report.RelationsRemoved++
		}
		if err := g.RemoveNode(n.ID); err != nil {
			return report, err
		}
		report.Merged++
		logger.Debug("merged duplicate", "node", n.String(), "into", target)
	}
	return report, nil
}
